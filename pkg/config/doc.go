// Package config provides configuration structs and helpers for simple-token.
//
// Configuration is read from the environment with cleanenv struct tags. The
// env helpers cover the few values read before cleanenv runs.
//
//	cfg := config.TokenSettingsConfig{}
//	if err := cleanenv.ReadEnv(&cfg); err != nil {
//		return err
//	}
//
// # Comma lists
//
// Every list-valued setting (enabled auth methods, enabled services, enabled
// match fields, role names) is parsed with ParseList. Segments that are empty
// or only whitespace are dropped; the remaining segments are kept exactly as
// written, including surrounding whitespace:
//
//	config.ParseList("test,1, null, , ,0,false")
//	// []string{"test", "1", " null", "0", "false"}
//
// # Validation
//
// Each config struct has a Validate method built on Checker, which reports
// every problem rather than the first:
//
//	var c config.Checker
//	c.Required("TOKEN_PG_HOST", host)
//	c.Port("TOKEN_PG_PORT", port)
//	return c.Err()
package config
