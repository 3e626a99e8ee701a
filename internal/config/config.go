// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported values of DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// LogLevel controls the minimum log level: debug, info, warn or error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to the Vite dev server.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// DatabaseDriver selects the document store: postgres or sqlite.
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`

	// DatabaseURL is the Postgres connection string. Required for postgres.
	DatabaseURL string `env:"DATABASE_URL"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `env:"SQLITE_PATH" envDefault:"driftboat.db"`

	// AdminEmail and AdminPasswordHash (bcrypt) are the single admin account.
	// Admin login is refused while either is empty.
	AdminEmail        string `env:"ADMIN_EMAIL"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	// JWTSecret signs admin session tokens. Required.
	JWTSecret string `env:"JWT_SECRET,notEmpty"`

	// TokenTTL is how long an admin session lasts.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing every required variable that is not set.
func Load() (Config, error) {
	var cfg Config
	var missing []string

	if err := env.Parse(&cfg); err != nil {
		var agg env.AggregateError
		if !errors.As(err, &agg) {
			return Config{}, fmt.Errorf("config.Load: %w", err)
		}
		for _, e := range agg.Errors {
			var (
				notSet env.EnvVarIsNotSetError
				empty  env.EmptyEnvVarError
			)
			switch {
			case errors.As(e, &notSet):
				missing = append(missing, notSet.Key)
			case errors.As(e, &empty):
				missing = append(missing, empty.Key)
			default:
				return Config{}, fmt.Errorf("config.Load: %w", e)
			}
		}
	}

	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case DriverSQLite:
	default:
		return Config{}, fmt.Errorf("config.Load: DATABASE_DRIVER must be %q or %q, got %q",
			DriverPostgres, DriverSQLite, cfg.DatabaseDriver)
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	cfg.CORSOrigins = trimCSV(cfg.CORSOrigins)
	return cfg, nil
}

// trimCSV trims each entry and drops empty ones.
func trimCSV(parts []string) []string {
	var out []string
	for _, part := range parts {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
