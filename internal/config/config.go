// Package config loads application configuration from environment
// variables. main loads an optional .env file first.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// MinSecretLen is the shortest accepted HMAC-SHA256 signing secret.
const MinSecretLen = 32

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env         string        // APP_ENV: label such as dev or prod
	Port        string        // APP_PORT: HTTP port to listen on
	DatabaseURL string        // DATABASE_URL: store backend and location
	JWTSecret   string        // JWT_SECRET: HS256 signing key, no default
	AccessTTL   time.Duration // ACCESS_TOKEN_TTL: token lifetime
	BcryptCost  int           // BCRYPT_COST: bcrypt cost factor
	LogLevel    string        // LOG_LEVEL: debug, info, warn or error
	LogFormat   string        // LOG_FORMAT: json or text
	AMQPURL     string        // RABBITMQ_URL (or AMQP_URL): empty disables events
}

// Load reads the environment. Every problem found is reported in the
// returned error so a misconfigured deployment fails once with the full list.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		Env:         getenv("APP_ENV", "dev"),
		Port:        getenv("APP_PORT", "5000"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "json"),
		AMQPURL:     getenv("RABBITMQ_URL", os.Getenv("AMQP_URL")),
	}

	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("missing required env var: DATABASE_URL"))
	}
	switch {
	case cfg.JWTSecret == "":
		errs = append(errs, errors.New("missing required env var: JWT_SECRET"))
	case len(cfg.JWTSecret) < MinSecretLen:
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLen))
	}

	ttl, err := time.ParseDuration(getenv("ACCESS_TOKEN_TTL", "1h"))
	if err != nil || ttl <= 0 {
		errs = append(errs, fmt.Errorf("invalid duration for ACCESS_TOKEN_TTL: %q", os.Getenv("ACCESS_TOKEN_TTL")))
	}
	cfg.AccessTTL = ttl

	cost, err := strconv.Atoi(getenv("BCRYPT_COST", "10"))
	if err != nil || cost < 4 || cost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be an integer between 4 and 31: %q", os.Getenv("BCRYPT_COST")))
	}
	cfg.BcryptCost = cost

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		errs = append(errs, fmt.Errorf("invalid int for APP_PORT: %q", cfg.Port))
	}

	return cfg, errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }
