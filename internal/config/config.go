// Package config provides centralized configuration management for the
// importer. It loads configuration from environment variables with sensible
// defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Database DatabaseConfig
	Source   SourceConfig
	Import   ImportConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SourceConfig holds settings for the upstream results platform.
type SourceConfig struct {
	// BaseURL is the platform endpoint (default: production LiftControl)
	BaseURL string `env:"LIFTCONTROL_BASE_URL" default:"https://liftcontrol.fr"`

	// Timeout is the per-request HTTP timeout (default: 30s)
	Timeout time.Duration `env:"LIFTCONTROL_TIMEOUT" default:"30s"`
}

// ImportConfig holds import pipeline settings.
type ImportConfig struct {
	// RegistryPath is the competition registry YAML file (default: competitions.yaml)
	RegistryPath string `env:"IMPORT_REGISTRY_PATH" default:"competitions.yaml"`

	// CreatedBy is the provenance marker written on every imported attempt
	// (default: canonical-importer)
	CreatedBy string `env:"IMPORT_CREATED_BY" default:"canonical-importer"`

	// Timeout bounds a single competition import transaction (default: 5m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"5m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}
