package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvURL, "https://profile.mysideline.com.au/register/clubsearch")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if !cfg.SyncEnabled {
		t.Error("sync should be enabled by default")
	}
	if !cfg.ScrapingEnabled {
		t.Error("scraping should be enabled by default")
	}
	if cfg.UseMock {
		t.Error("mock mode should be off by default")
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.RequestTimeout)
	}
	if cfg.RetryAttempts != 3 {
		t.Errorf("expected default retry attempts 3, got %d", cfg.RetryAttempts)
	}
	if cfg.Development {
		t.Error("development mode should be off by default")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvURL, "https://example.org/search")
	t.Setenv(EnvSyncEnabled, "false")
	t.Setenv(EnvScrapingEnabled, "false")
	t.Setenv(EnvUseMock, "true")
	t.Setenv(EnvRequestTimeout, "45000")
	t.Setenv(EnvRetryAttempts, "5")
	t.Setenv(EnvMode, "development")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.SyncEnabled {
		t.Error("sync should be disabled")
	}
	if cfg.ScrapingEnabled {
		t.Error("scraping should be disabled")
	}
	if !cfg.UseMock {
		t.Error("mock mode should be on")
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("expected timeout 45s, got %v", cfg.RequestTimeout)
	}
	if cfg.RetryAttempts != 5 {
		t.Errorf("expected retry attempts 5, got %d", cfg.RetryAttempts)
	}
	if !cfg.Development {
		t.Error("development mode should be on")
	}
}

func TestFromEnvTimeoutClamp(t *testing.T) {
	t.Setenv(EnvURL, "https://example.org/search")
	t.Setenv(EnvRequestTimeout, "2000")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("expected timeout clamped to 10s, got %v", cfg.RequestTimeout)
	}
}

func TestFromEnvRequiresURL(t *testing.T) {
	t.Setenv(EnvURL, "")
	t.Setenv(EnvUseMock, "false")

	if _, err := FromEnv(); err == nil {
		t.Error("expected error when URL is missing and mock is off")
	}

	t.Setenv(EnvUseMock, "true")
	if _, err := FromEnv(); err != nil {
		t.Errorf("mock mode should not require a URL, got error: %v", err)
	}
}

func TestFromEnvBadInteger(t *testing.T) {
	t.Setenv(EnvURL, "https://example.org/search")
	t.Setenv(EnvRequestTimeout, "soon")

	if _, err := FromEnv(); err == nil {
		t.Error("expected error for non-integer timeout")
	}
}
