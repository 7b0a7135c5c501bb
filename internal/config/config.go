// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/kPratik07/Bank-referral-system/internal/store"
)

// Config is the runtime configuration shared by every command.
// Command-line flags override these values after loading.
type Config struct {
	DBDriver        string        `env:"REFERRAL_DB_DRIVER"        envDefault:"sqlite3"`
	DBDSN           string        `env:"REFERRAL_DB_DSN"           envDefault:"referral.db"`
	HTTPAddr        string        `env:"REFERRAL_HTTP_ADDR"        envDefault:":8080"`
	CORSOrigin      string        `env:"REFERRAL_CORS_ORIGIN"      envDefault:"*"`
	LogLevel        slog.Level    `env:"REFERRAL_LOG_LEVEL"        envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"REFERRAL_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads dotenv files (".env" when none are named; missing files are
// ignored) and then the process environment. Variables already set in the
// environment win over dotenv values.
func Load(dotenvFiles ...string) (Config, error) {
	_ = godotenv.Load(dotenvFiles...)

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks fields that env parsing cannot.
func (c Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("REFERRAL_DB_DRIVER: unsupported driver %q", c.DBDriver))
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		errs = append(errs, errors.New("REFERRAL_DB_DSN: must not be empty"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("REFERRAL_SHUTDOWN_TIMEOUT: must be positive"))
	}
	return errors.Join(errs...)
}

// StoreOptions returns the ledger options described by c.
func (c Config) StoreOptions() store.Options {
	return store.Options{Driver: c.DBDriver, DSN: c.DBDSN}
}
