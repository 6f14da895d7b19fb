package config

import "strconv"

// Setting names shared by every settings store
const (
	SettingAuthMethods     = "auth"
	SettingServices        = "services"
	SettingUserMatchFields = "usermatchfields"
	SettingTokenLifetime   = "tokenlifetime"
)

// TokenSettingsConfig is the environment fallback for the token settings.
// Values stored in the database take precedence when present.
type TokenSettingsConfig struct {
	AuthMethods     string `env:"TOKEN_AUTH_METHODS" env-default:"manual"`
	Services        string `env:"TOKEN_SERVICES" env-default:""`
	UserMatchFields string `env:"TOKEN_USER_MATCH_FIELDS" env-default:""`
	// Lifetime in seconds, 0 means no expiry
	TokenLifetime int64 `env:"TOKEN_LIFETIME" env-default:"0"`
}

// ToMap returns the settings keyed by setting name
func (c TokenSettingsConfig) ToMap() map[string]string {
	return map[string]string{
		SettingAuthMethods:     c.AuthMethods,
		SettingServices:        c.Services,
		SettingUserMatchFields: c.UserMatchFields,
		SettingTokenLifetime:   strconv.FormatInt(c.TokenLifetime, 10),
	}
}

// Validate rejects a negative lifetime
func (c TokenSettingsConfig) Validate() error {
	var check Checker
	check.NonNegative("TOKEN_LIFETIME", c.TokenLifetime)
	return check.Err()
}
