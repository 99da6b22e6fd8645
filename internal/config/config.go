// Package config loads application settings from environment variables
// with sensible defaults and validates them on startup to fail fast on
// misconfiguration. A local .env file is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// OutputDir is where {id}.csv files are written (ILSOS_OUTPUT_DIR,
	// default "data").
	OutputDir string

	// DBPath locates the sqlite run ledger (ILSOS_DB_PATH, default
	// "data/runs.db").
	DBPath string

	// DropDir is the local archive directory used by the localdir
	// source and the -watch trigger (ILSOS_DROP_DIR, default "drop").
	DropDir string

	// SourceType selects the archive source: "http" or "localdir"
	// (ILSOS_SOURCE, default "http").
	SourceType string

	// HTTPTimeout bounds a single archive download
	// (ILSOS_HTTP_TIMEOUT, default 180s).
	HTTPTimeout time.Duration

	// Retry bounds for transient download failures.
	RetryMaxAttempts int           // ILSOS_RETRY_MAX_ATTEMPTS, default 3
	RetryMinWait     time.Duration // ILSOS_RETRY_MIN_WAIT, default 4s
	RetryMaxWait     time.Duration // ILSOS_RETRY_MAX_WAIT, default 10s

	// Concurrency is how many dataset pipelines run in parallel
	// (ILSOS_CONCURRENCY, default 3).
	Concurrency int

	// Logging.
	LogLevel  string // ILSOS_LOG_LEVEL, default "info"
	LogFormat string // ILSOS_LOG_FORMAT, "text" or "json", default "text"
}

// Load reads configuration from the environment (and .env, if present),
// applies defaults, and validates the result.
func Load() (*Config, error) {
	// Missing .env is fine; explicit env vars always win.
	_ = godotenv.Load()

	cfg := &Config{
		OutputDir:  getString("ILSOS_OUTPUT_DIR", "data"),
		DBPath:     getString("ILSOS_DB_PATH", "data/runs.db"),
		DropDir:    getString("ILSOS_DROP_DIR", "drop"),
		SourceType: getString("ILSOS_SOURCE", "http"),
		LogLevel:   getString("ILSOS_LOG_LEVEL", "info"),
		LogFormat:  getString("ILSOS_LOG_FORMAT", "text"),
	}

	var err error
	if cfg.HTTPTimeout, err = getDuration("ILSOS_HTTP_TIMEOUT", 180*time.Second); err != nil {
		return nil, err
	}
	if cfg.RetryMaxAttempts, err = getInt("ILSOS_RETRY_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.RetryMinWait, err = getDuration("ILSOS_RETRY_MIN_WAIT", 4*time.Second); err != nil {
		return nil, err
	}
	if cfg.RetryMaxWait, err = getDuration("ILSOS_RETRY_MAX_WAIT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = getInt("ILSOS_CONCURRENCY", 3); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if c.SourceType != "http" && c.SourceType != "localdir" {
		return fmt.Errorf("unknown source type %q (want http or localdir)", c.SourceType)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got %d", c.RetryMaxAttempts)
	}
	if c.RetryMinWait > c.RetryMaxWait {
		return fmt.Errorf("retry min wait %s exceeds max wait %s", c.RetryMinWait, c.RetryMaxWait)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
