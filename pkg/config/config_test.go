package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POS_API_BASE_URL", "https://api.example.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Env != "dev" || !cfg.App.IsDev() {
		t.Fatalf("expected dev defaults, got %q", cfg.App.Env)
	}
	if cfg.API.RequestTimeout != 10*time.Second {
		t.Fatalf("expected 10s request timeout, got %v", cfg.API.RequestTimeout)
	}
	if cfg.API.RetryAttempts != 2 {
		t.Fatalf("expected 2 retry attempts, got %d", cfg.API.RetryAttempts)
	}
	if cfg.Sync.Interval != 2*time.Minute {
		t.Fatalf("expected 2m sync interval, got %v", cfg.Sync.Interval)
	}
	if cfg.Storage.Driver != StorageDriverSQLite {
		t.Fatalf("expected sqlite driver default, got %q", cfg.Storage.Driver)
	}
}

func TestLoadRequiresBaseURL(t *testing.T) {
	t.Setenv("POS_API_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when API base URL is missing")
	}
}

func TestLoadRejectsUnknownStorageDriver(t *testing.T) {
	t.Setenv("POS_API_BASE_URL", "https://api.example.test")
	t.Setenv("POS_STORAGE_DRIVER", "papyrus")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
}
