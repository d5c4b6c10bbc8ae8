// Package config loads application settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	GinMode  string `mapstructure:"GIN_MODE"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	// DBLogLevel is the gorm logger level: silent, error, warn or info.
	DBLogLevel string `mapstructure:"DB_LOG_LEVEL"`

	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	SessionStore  string `mapstructure:"SESSION_STORE"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`

	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTIssuer      string        `mapstructure:"JWT_ISSUER"`
	AccessTokenTTL time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	BcryptCost     int           `mapstructure:"BCRYPT_COST"`

	// EmailAPIKey enables delivery through the transactional email API. When empty,
	// notifications are only logged.
	EmailAPIKey     string `mapstructure:"EMAIL_API_KEY"`
	EmailAPIURL     string `mapstructure:"EMAIL_API_URL"`
	EmailSender     string `mapstructure:"EMAIL_SENDER"`
	EmailSenderName string `mapstructure:"EMAIL_SENDER_NAME"`
	NotifyWorkers   int    `mapstructure:"NOTIFY_WORKERS"`
	NotifyQueueSize int    `mapstructure:"NOTIFY_QUEUE_SIZE"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// Load reads .env (if present), then the environment. Env vars override .env values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine

	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "membership")
	v.SetDefault("DB_PASSWORD", "membership")
	v.SetDefault("DB_NAME", "membership")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("SESSION_STORE", "cookie")
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "membership-api")
	v.SetDefault("ACCESS_TOKEN_TTL", "30m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("EMAIL_API_KEY", "")
	v.SetDefault("EMAIL_API_URL", "https://api.brevo.com/v3/smtp/email")
	v.SetDefault("EMAIL_SENDER", "no-reply@example.com")
	v.SetDefault("EMAIL_SENDER_NAME", "SaaS App")
	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 256)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// defaultSessionSecret is only fit for local development.
const defaultSessionSecret = "default-secret-key-change-me"

// minSessionSecretLength is the shortest SESSION_SECRET accepted in release mode.
const minSessionSecretLength = 32

// Validate checks field values and fills derived defaults.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}

	c.DBDriver = strings.ToLower(c.DBDriver)
	if c.DBDriver != "mysql" && c.DBDriver != "postgres" {
		return fmt.Errorf("config: DB_DRIVER must be mysql or postgres, got %q", c.DBDriver)
	}

	c.SessionStore = strings.ToLower(c.SessionStore)
	if c.SessionStore != "cookie" && c.SessionStore != "redis" {
		return fmt.Errorf("config: SESSION_STORE must be cookie or redis, got %q", c.SessionStore)
	}

	if c.GinMode == "release" {
		switch {
		case c.SessionSecret == "" || c.SessionSecret == defaultSessionSecret:
			return errors.New("config: SESSION_SECRET must be set in release mode")
		case len(c.SessionSecret) < minSessionSecretLength:
			return fmt.Errorf("config: SESSION_SECRET must be at least %d bytes in release mode", minSessionSecretLength)
		}
	}

	if c.JWTSecret == "" {
		if c.GinMode == "release" {
			return errors.New("config: JWT_SECRET must be set in release mode")
		}
		c.JWTSecret = c.SessionSecret
	}

	if c.AccessTokenTTL <= 0 {
		c.AccessTokenTTL = 30 * time.Minute
	}

	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("config: BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}

	if c.NotifyWorkers <= 0 {
		c.NotifyWorkers = 1
	}
	if c.NotifyQueueSize <= 0 {
		c.NotifyQueueSize = 64
	}
	return nil
}

// RedisAddr returns host:port for the session store.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}
