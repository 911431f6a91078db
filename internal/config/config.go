package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// EnvURL is the MySideline search page the scraper drives. Required
	// unless mock mode is on.
	EnvURL = "MYSIDELINE_URL"
	// EnvSyncEnabled is the master gate for the whole pipeline.
	EnvSyncEnabled = "MYSIDELINE_SYNC_ENABLED"
	// EnvScrapingEnabled gates the browser; when "false" a scrape returns
	// no events without launching anything.
	EnvScrapingEnabled = "MYSIDELINE_ENABLE_SCRAPING"
	// EnvUseMock replaces the browser with deterministic synthetic events.
	EnvUseMock = "MYSIDELINE_USE_MOCK"
	// EnvRequestTimeout is the per-request browser timeout in milliseconds.
	EnvRequestTimeout = "MYSIDELINE_REQUEST_TIMEOUT"
	// EnvRetryAttempts is the datastore readiness probe retry count.
	EnvRetryAttempts = "MYSIDELINE_RETRY_ATTEMPTS"
	// EnvMode selects the runtime mode; "development" runs the browser
	// headful and falls back to mock events when scraping fails.
	EnvMode = "MYSIDELINE_MODE"
	// EnvDatabasePath overrides where the carnival database lives.
	EnvDatabasePath = "MYSIDELINE_DATABASE_PATH"
)

const (
	// minRequestTimeout is the floor applied to MYSIDELINE_REQUEST_TIMEOUT.
	// The search page routinely takes several seconds to hydrate; anything
	// shorter just burns a run.
	minRequestTimeout = 10 * time.Second

	defaultRequestTimeout = 30 * time.Second
	defaultRetryAttempts  = 3
	defaultDatabasePath   = "carnivals.db"
)

// Config holds the pipeline configuration.
type Config struct {
	URL             string
	SyncEnabled     bool
	ScrapingEnabled bool
	UseMock         bool
	RequestTimeout  time.Duration
	RetryAttempts   int
	Development     bool
	DatabasePath    string
}

// FromEnv builds a Config from MYSIDELINE_* environment variables,
// applying defaults and clamps.
func FromEnv() (*Config, error) {
	cfg := &Config{
		URL:             strings.TrimSpace(os.Getenv(EnvURL)),
		SyncEnabled:     envBool(EnvSyncEnabled, true),
		ScrapingEnabled: envBool(EnvScrapingEnabled, true),
		UseMock:         envBool(EnvUseMock, false),
		RequestTimeout:  defaultRequestTimeout,
		RetryAttempts:   defaultRetryAttempts,
		Development:     strings.EqualFold(os.Getenv(EnvMode), "development"),
		DatabasePath:    defaultDatabasePath,
	}

	if raw := os.Getenv(EnvRequestTimeout); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = time.Duration(ms) * time.Millisecond
	}

	if raw := os.Getenv(EnvRetryAttempts); raw != "" {
		attempts, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvRetryAttempts, err)
		}
		cfg.RetryAttempts = attempts
	}

	if path := strings.TrimSpace(os.Getenv(EnvDatabasePath)); path != "" {
		cfg.DatabasePath = path
	}

	cfg.normalize()
	return cfg, cfg.Validate()
}

// normalize applies clamps and defaults that keep a misconfigured pipeline
// serviceable rather than failing it.
func (c *Config) normalize() {
	if c.RequestTimeout < minRequestTimeout {
		c.RequestTimeout = minRequestTimeout
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = defaultRetryAttempts
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.URL == "" && !c.UseMock {
		return fmt.Errorf("%s is required unless %s is true", EnvURL, EnvUseMock)
	}
	return nil
}

// envBool reads a "true"/"false" environment variable, returning the
// fallback when unset or unrecognized.
func envBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true":
		return true
	case "false":
		return false
	default:
		return fallback
	}
}
