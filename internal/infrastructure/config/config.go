package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT   JWTConfig
	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type JWTConfig struct {
	Secret            string `env:"JWT_SECRET,              default=dev-secret-change-me"`
	AccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES,  default=30"`
	RefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES, default=10080"`
}

type AuthConfig struct {
	MinPasswordLength int `env:"AUTH_MIN_PASSWORD_LENGTH, default=8"`
	// MaxLoginFailures failed attempts per username inside LoginWindow
	// trip the throttle.
	MaxLoginFailures int           `env:"AUTH_MAX_LOGIN_FAILURES, default=10"`
	LoginWindow      time.Duration `env:"AUTH_LOGIN_WINDOW,       default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=auth_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// AccessTTL returns the access-token lifetime as a duration.
func (c JWTConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMinutes) * time.Minute
}

// RefreshTTL returns the refresh-token lifetime as a duration.
func (c JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLMinutes) * time.Minute
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that must never reach production: the
// default signing secret signs tokens anyone can forge.
func (c *Config) Validate() error {
	if c.Env == "production" && (c.JWT.Secret == "" || c.JWT.Secret == "dev-secret-change-me") {
		return errors.New("config: JWT_SECRET must be set to a non-default value in production")
	}
	if c.JWT.AccessTTLMinutes <= 0 || c.JWT.RefreshTTLMinutes <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}
	return nil
}
