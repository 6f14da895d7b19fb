package config

import "strings"

// AuthzConfig maps capabilities to the caller roles that hold them
type AuthzConfig struct {
	// GeneratorRoles hold the token:generatetoken capability for every identity
	GeneratorRoles string `env:"TOKEN_GENERATOR_ROLES" env-default:"admin,superadmin"`

	// ConfigureRoles hold the token:configure capability (admin listings)
	ConfigureRoles string `env:"TOKEN_CONFIGURE_ROLES" env-default:"admin,superadmin"`

	// AllowSelf lets a caller generate tokens for its own identity without a role
	AllowSelf bool `env:"TOKEN_ALLOW_SELF" env-default:"false"`
}

// ParseRoleNames parses a comma-separated list of role names.
// Role names are trimmed; an empty result falls back to ["admin", "superadmin"].
func ParseRoleNames(value string) []string {
	roles := []string{}
	for _, part := range ParseList(value) {
		roles = append(roles, strings.TrimSpace(part))
	}

	if len(roles) == 0 {
		return []string{"admin", "superadmin"}
	}
	return roles
}

// HasAnyRole reports whether one of roles is in allowed, ignoring case
func HasAnyRole(roles []string, allowed []string) bool {
	for _, role := range roles {
		for _, a := range allowed {
			if strings.EqualFold(role, a) {
				return true
			}
		}
	}
	return false
}
