package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"videoab/internal/config/configs"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library. The
// nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. See the individual types in the configs package for
// default values and options. Use Load to construct a Config.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev). It is
	// attached to the logger.
	Env string `env:"ENV" envDefault:"prod"`

	// HTTP holds configuration for the HTTP server. Environment variables
	// prefixed with HTTP_ will populate this struct.
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger. Environment variables prefixed
	// with LOG_ will populate this struct.
	Log configs.Logger `envPrefix:"LOG_"`

	// Store selects the persistence adapter (STORE_DRIVER).
	Store configs.Store `envPrefix:"STORE_"`

	// Psql configures the PostgreSQL connection. Environment variables
	// prefixed with PSQL_ will populate this struct.
	Psql configs.Postgres `envPrefix:"PSQL_"`

	// Redis configures the analysis cache (REDIS_*).
	Redis configs.Redis `envPrefix:"REDIS_"`

	// Storage configures the media bucket (S3_*).
	Storage configs.Storage `envPrefix:"S3_"`

	// TextGen configures the prose generator (OPENAI_*).
	TextGen configs.TextGen `envPrefix:"OPENAI_"`

	// Experiment holds the lifecycle and analytics policy (EXPERIMENT_*).
	Experiment configs.Experiment `envPrefix:"EXPERIMENT_"`
}

// Load reads configuration from environment variables into a Config. If
// parsing fails, an error is returned. All fields are loaded with their
// specified defaults when no environment variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Experiment.Validate(); err != nil {
		return cfg, fmt.Errorf("experiment config: %w", err)
	}
	switch cfg.Store.Driver {
	case "postgres", "memory":
	default:
		return cfg, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	return cfg, nil
}
