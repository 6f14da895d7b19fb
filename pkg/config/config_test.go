package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleNames(t *testing.T) {
	assert.Equal(t, []string{"admin", "superadmin"}, ParseRoleNames(""))
	assert.Equal(t, []string{"admin", "superadmin"}, ParseRoleNames(" , "))
	assert.Equal(t, []string{"tokenmanager", "admin"}, ParseRoleNames("tokenmanager, admin"))
}

func TestHasAnyRole(t *testing.T) {
	allowed := []string{"admin", "superadmin"}

	assert.True(t, HasAnyRole([]string{"user", "Admin"}, allowed))
	assert.False(t, HasAnyRole([]string{"user"}, allowed))
	assert.False(t, HasAnyRole(nil, allowed))
}

func TestTokenSettingsConfig_ToMap(t *testing.T) {
	cfg := TokenSettingsConfig{
		AuthMethods:     "manual,ldap",
		Services:        "fake WS",
		UserMatchFields: "username,profile_staffid",
		TokenLifetime:   3600,
	}

	m := cfg.ToMap()
	assert.Equal(t, "manual,ldap", m[SettingAuthMethods])
	assert.Equal(t, "fake WS", m[SettingServices])
	assert.Equal(t, "username,profile_staffid", m[SettingUserMatchFields])
	assert.Equal(t, "3600", m[SettingTokenLifetime])
}

func TestValidate(t *testing.T) {
	t.Run("negative lifetime", func(t *testing.T) {
		err := TokenSettingsConfig{TokenLifetime: -1}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TOKEN_LIFETIME")
	})

	t.Run("short jwt secret", func(t *testing.T) {
		err := JwtConfig{Secret: "short"}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 16 characters")
	})

	t.Run("database errors are collected", func(t *testing.T) {
		err := DatabaseConfig{}.Validate()
		require.Error(t, err)

		var errs Problems
		require.ErrorAs(t, err, &errs)
		assert.Len(t, errs, 4)
	})

	t.Run("valid database", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, Database: "token_db", User: "token"}
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, "postgres://token:@localhost:5432/token_db?sslmode=disable&search_path=,public", cfg.ToDatabaseURL())
	})
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TOKEN_TEST_FILE", "/etc/token.env")
	t.Setenv("TOKEN_TEST_TTL", "90m")
	t.Setenv("TOKEN_TEST_BAD_TTL", "soon")

	assert.Equal(t, "/etc/token.env", GetEnvOrDefault("TOKEN_TEST_FILE", ".env"))
	assert.Equal(t, ".env", GetEnvOrDefault("TOKEN_TEST_MISSING", ".env"))
	assert.Equal(t, 90*time.Minute, GetEnvDuration("TOKEN_TEST_TTL", time.Hour))
	assert.Equal(t, time.Hour, GetEnvDuration("TOKEN_TEST_BAD_TTL", time.Hour))
}

func TestJwtConfigValidate_EmptySecret(t *testing.T) {
	err := JwtConfig{}.Validate()

	var problems Problems
	require.ErrorAs(t, err, &problems)
	require.Len(t, problems, 1)
	assert.Equal(t, "JWT_SECRET is required", problems[0].Error())
	assert.Equal(t, "invalid configuration: JWT_SECRET is required", err.Error())

	assert.NoError(t, JwtConfig{Secret: "0123456789abcdef"}.Validate())
}
