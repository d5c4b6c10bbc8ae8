package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		HTTPAddr:      ":8080",
		DBDriver:      "MySQL",
		SessionStore:  "cookie",
		SessionSecret: "session-secret",
	}
}

const strongSecret = "0123456789abcdef0123456789abcdef"

func TestValidate_FillsDefaults(t *testing.T) {
	cfg := validConfig()

	require.NoError(t, cfg.Validate())
	require.Equal(t, "mysql", cfg.DBDriver)
	require.Equal(t, "session-secret", cfg.JWTSecret)
	require.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 12, cfg.BcryptCost)
	require.Equal(t, 1, cfg.NotifyWorkers)
	require.Equal(t, 64, cfg.NotifyQueueSize)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.DBDriver = "sqlserver" }},
		{"unknown session store", func(c *Config) { c.SessionStore = "memcached" }},
		{"missing jwt secret in release", func(c *Config) {
			c.GinMode = "release"
			c.SessionSecret = strongSecret
		}},
		{"default session secret in release", func(c *Config) {
			c.GinMode = "release"
			c.JWTSecret = "jwt-secret"
			c.SessionSecret = defaultSessionSecret
		}},
		{"empty session secret in release", func(c *Config) {
			c.GinMode = "release"
			c.JWTSecret = "jwt-secret"
			c.SessionSecret = ""
		}},
		{"short session secret in release", func(c *Config) {
			c.GinMode = "release"
			c.JWTSecret = "jwt-secret"
			c.SessionSecret = "too-short"
		}},
		{"bcrypt cost too high", func(c *Config) { c.BcryptCost = 40 }},
		{"missing address", func(c *Config) { c.HTTPAddr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_ReleaseAcceptsStrongSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.GinMode = "release"
	cfg.JWTSecret = "jwt-secret"
	cfg.SessionSecret = strongSecret

	require.NoError(t, cfg.Validate())
}

func TestLoad_RejectsDefaultSessionSecretInRelease(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "real-jwt-secret")

	_, err := Load()
	require.ErrorContains(t, err, "SESSION_SECRET")
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("ACCESS_TOKEN_TTL", "45m")
	t.Setenv("JWT_SECRET", "jwt-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.DBDriver)
	require.Equal(t, 45*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, "jwt-secret", cfg.JWTSecret)
	require.Equal(t, "localhost:6379", cfg.RedisAddr())
}
