// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables on top.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Percentage denominator sources.
const (
	MaxScoreFixed = "fixed"
	MaxScoreTable = "table"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// PersistQueueSize bounds the in-memory persistence queue.
	PersistQueueSize int `koanf:"persist_queue_size"`

	// PersistWorkerCount sets the number of persistence workers.
	PersistWorkerCount int `koanf:"persist_worker_count"`

	// DedupeSize sets the size of the submission deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// SessionCapacity caps the number of in-flight sessions kept in memory.
	SessionCapacity int `koanf:"session_capacity"`

	// StoreDriver picks the result store: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// SQLitePath is the database file used when StoreDriver is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// MaxScoreSource picks the percentage denominator: the fixed constant or
	// the value derived from the question table.
	MaxScoreSource string `koanf:"max_score_source"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		PersistQueueSize:   10_000,
		PersistWorkerCount: runtime.NumCPU(),
		DedupeSize:         100_000,
		SessionCapacity:    50_000,
		StoreDriver:        StoreMemory,
		SQLitePath:         "soulpath.db",
		MaxScoreSource:     MaxScoreFixed,
	}
}

// Normalize lower-cases the enumerated fields so later comparisons can be exact.
func (c *Config) Normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.MaxScoreSource = strings.ToLower(strings.TrimSpace(c.MaxScoreSource))
}

// Validate checks field values that the service cannot start without.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.SessionCapacity <= 0 {
		return fmt.Errorf("%w: session_capacity must be positive, got %d", ErrInvalidConfig, c.SessionCapacity)
	}
	switch strings.ToLower(c.StoreDriver) {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty for the sqlite driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	switch strings.ToLower(c.MaxScoreSource) {
	case MaxScoreFixed, MaxScoreTable:
	default:
		return fmt.Errorf("%w: unknown max_score_source %q", ErrInvalidConfig, c.MaxScoreSource)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
