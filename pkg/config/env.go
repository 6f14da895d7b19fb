package config

import (
	"log/slog"
	"os"
	"time"
)

// GetEnvOrDefault returns the value of key, or fallback when it is unset or
// empty. It is for values needed before cleanenv runs, such as the .env path.
func GetEnvOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// GetEnvDuration parses key as a Go duration ("90m", "2h"). An unparsable
// value is logged and fallback is used.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	v := GetEnvOrDefault(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("ignoring invalid duration", "env", key, "value", v, "error", err)
		return fallback
	}
	return d
}
