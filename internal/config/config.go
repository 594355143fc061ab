// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Storage drivers accepted in STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// StoreDriver selects the backing engine: postgres or badger.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// DatabaseURL is the Postgres connection string. Required for postgres.
	DatabaseURL string `env:"DATABASE_URL"`

	// BadgerPath is the BadgerDB data directory.
	BadgerPath string `env:"BADGER_PATH" envDefault:"./data/tags"`

	// BadgerInMemory runs BadgerDB without touching disk.
	BadgerInMemory bool `env:"BADGER_IN_MEMORY" envDefault:"false"`

	// TagsContainer names the collection holding all tags.
	TagsContainer string `env:"TAGS_CONTAINER" envDefault:"Tags"`

	// DefaultPrincipal is recorded as creator/modifier when a request carries
	// no principal header.
	DefaultPrincipal string `env:"DEFAULT_PRINCIPAL" envDefault:"system"`

	// PrincipalHeader is the trusted request header naming the principal.
	PrincipalHeader string `env:"PRINCIPAL_HEADER" envDefault:"X-Principal"`

	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`
}

// Load reads configuration from the process environment and returns a Config.
// Returns an error naming any variable that is missing or invalid.
func Load() (Config, error) {
	return LoadFrom(env.ToMap(os.Environ()))
}

// LoadFrom is Load over an explicit variable map.
// Empty values are treated as unset, so their defaults apply.
func LoadFrom(vars map[string]string) (Config, error) {
	set := make(map[string]string, len(vars))
	for k, v := range vars {
		if strings.TrimSpace(v) != "" {
			set[k] = v
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: set}); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case DriverBadger:
		if !c.BadgerInMemory && c.BadgerPath == "" {
			missing = append(missing, "BADGER_PATH")
		}
	default:
		return fmt.Errorf("config: STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverBadger, c.StoreDriver)
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// SlogLevel returns LogLevel as a slog.Level, falling back to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// trimAll trims every entry and drops the empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
