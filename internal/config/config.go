// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration shared by the server and the worker.
type Config struct {
	AppEnv   string
	LogLevel string
	HTTPAddr string

	DB   DBConfig
	Auth AuthConfig
	HTTP HTTPConfig

	NumeratorStrategy string
	IdempotencyTTL    time.Duration
	Outbox            OutboxConfig
}

// DBConfig configures the connection pool.
type DBConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// AuthConfig configures bearer token validation.
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

// HTTPConfig configures the public HTTP surface.
type HTTPConfig struct {
	CORSAllowedOrigins string
	RateLimit          string
}

// OutboxConfig configures the relay in the worker.
type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// Development reports whether the process runs in development mode.
func (c Config) Development() bool {
	return c.AppEnv == "development"
}

// Load reads a .env file when one exists and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		DB: DBConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			JWTIssuer: getEnv("JWT_ISSUER", "snackexport-identity"),
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: os.Getenv("CORS_ALLOWED_ORIGINS"),
			RateLimit:          getEnv("RATE_LIMIT", "300-M"),
		},
		NumeratorStrategy: getEnv("NUMERATOR_STRATEGY", "cached"),
		IdempotencyTTL:    getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		Outbox: OutboxConfig{
			PollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", time.Second),
			BatchSize:    getEnvInt("OUTBOX_BATCH_SIZE", 100),
		},
	}
	return cfg, cfg.Validate()
}

// Validate checks required keys and value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.DB.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DB.MaxConns < 1 || c.DB.MinConns < 0 || c.DB.MinConns > c.DB.MaxConns {
		errs = append(errs, fmt.Errorf("invalid pool size: min %d, max %d", c.DB.MinConns, c.DB.MaxConns))
	}
	switch c.NumeratorStrategy {
	case "strict", "cached":
	default:
		errs = append(errs, fmt.Errorf("NUMERATOR_STRATEGY must be strict or cached, got %q", c.NumeratorStrategy))
	}
	if c.Outbox.BatchSize < 1 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
