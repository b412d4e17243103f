package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrMissingSecret = errors.New("JWT_SECRET is required")

type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	DBType        string        `env:"DB_TYPE" envDefault:"postgres"`
	PostgresURL   string        `env:"POSTGRES_URL"`
	MongoURL      string        `env:"MONGO_URL"`
	MongoDatabase string        `env:"MONGO_DATABASE" envDefault:"todoapi"`
	SQLitePath    string        `env:"SQLITE_PATH" envDefault:"todoapi.db"`
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`
	HashWorkers   int           `env:"HASH_WORKERS" envDefault:"0"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"json"`
	OTLPEndpoint  string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigin string        `env:"ALLOWED_ORIGIN" envDefault:"*"`
}

// LoadDotEnv loads a .env file into the process environment when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using system environment variables")
	}
}

// Parse reads configuration from the environment only.
func Parse() (*Config, error) {
	cfg, err := ParseStore()
	if err != nil {
		return nil, err
	}
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("TOKEN_TTL must be positive")
	}
	return cfg, nil
}

// ParseStore reads configuration and validates only the storage settings.
// Schema tooling uses it since it never signs tokens.
func ParseStore() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validateStore(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validateStore() error {
	switch c.DBType {
	case "postgres":
		if c.PostgresURL == "" {
			return errors.New("POSTGRES_URL is required when DB_TYPE=postgres")
		}
	case "mongo":
		if c.MongoURL == "" {
			return errors.New("MONGO_URL is required when DB_TYPE=mongo")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when DB_TYPE=sqlite")
		}
	default:
		return fmt.Errorf("DB_TYPE %q not supported", c.DBType)
	}
	return nil
}
