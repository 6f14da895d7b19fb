package config

// JwtConfig holds the settings used to verify caller JWTs
type JwtConfig struct {
	Secret   string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer   string `env:"JWT_ISSUER" env-default:"simple-idm"`
	Audience string `env:"JWT_AUDIENCE" env-default:"simple-token"`
}

// Validate checks that a signing secret is present and long enough for HS256
func (j JwtConfig) Validate() error {
	var c Checker
	c.Required("JWT_SECRET", j.Secret)
	c.MinLength("JWT_SECRET", j.Secret, 16)
	return c.Err()
}
