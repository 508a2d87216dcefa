package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_BASE_URL", "")
	t.Setenv("MAX_RETRIES", "")
	t.Setenv("INITIAL_DELAY_MS", "")
	t.Setenv("BACKOFF_FACTOR", "")
	t.Setenv("RETRYABLE_STATUS_CODES", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q want 8080", cfg.Port)
	}
	if cfg.StorageBaseURL != "http://localhost:8080/static" {
		t.Fatalf("StorageBaseURL mismatch: got %q", cfg.StorageBaseURL)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("MaxRetries mismatch: got %d want 3", cfg.MaxRetries)
	}
	if cfg.InitialDelay != time.Second {
		t.Fatalf("InitialDelay mismatch: got %s want 1s", cfg.InitialDelay)
	}
	if cfg.BackoffFactor != 2.0 {
		t.Fatalf("BackoffFactor mismatch: got %f want 2.0", cfg.BackoffFactor)
	}
	if cfg.RetryableStatusCodes != nil {
		t.Fatalf("RetryableStatusCodes should default to nil, got %v", cfg.RetryableStatusCodes)
	}
	if cfg.HTTPReadHeaderTimeout != 5*time.Second {
		t.Fatalf("HTTPReadHeaderTimeout mismatch: got %s want 5s", cfg.HTTPReadHeaderTimeout)
	}
}

func TestLoadConfigHTTPTimeoutOverrides(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT_SECONDS", "30")
	t.Setenv("HTTP_READ_HEADER_TIMEOUT_SECONDS", "10")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.HTTPReadTimeout != 30*time.Second {
		t.Fatalf("HTTPReadTimeout mismatch: got %s", cfg.HTTPReadTimeout)
	}
	if cfg.HTTPReadHeaderTimeout != 10*time.Second {
		t.Fatalf("HTTPReadHeaderTimeout mismatch: got %s", cfg.HTTPReadHeaderTimeout)
	}
}

func TestLoadConfigInheritsPortInStorageBaseURL(t *testing.T) {
	t.Setenv("PORT", "1919")
	t.Setenv("STORAGE_BASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StorageBaseURL != "http://localhost:1919/static" {
		t.Fatalf("StorageBaseURL mismatch: got %q", cfg.StorageBaseURL)
	}
}

func TestLoadConfigRetryOverrides(t *testing.T) {
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("INITIAL_DELAY_MS", "250")
	t.Setenv("BACKOFF_FACTOR", "1.5")
	t.Setenv("RETRYABLE_STATUS_CODES", "429, 503")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.MaxRetries != 5 {
		t.Fatalf("MaxRetries mismatch: got %d want 5", cfg.MaxRetries)
	}
	if cfg.InitialDelay != 250*time.Millisecond {
		t.Fatalf("InitialDelay mismatch: got %s", cfg.InitialDelay)
	}
	if cfg.BackoffFactor != 1.5 {
		t.Fatalf("BackoffFactor mismatch: got %f", cfg.BackoffFactor)
	}
	if len(cfg.RetryableStatusCodes) != 2 || cfg.RetryableStatusCodes[0] != 429 || cfg.RetryableStatusCodes[1] != 503 {
		t.Fatalf("RetryableStatusCodes mismatch: %v", cfg.RetryableStatusCodes)
	}
}

func TestLoadConfigRejectsInvalidRetrySettings(t *testing.T) {
	t.Setenv("MAX_RETRIES", "-1")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for negative MAX_RETRIES")
	}

	t.Setenv("MAX_RETRIES", "3")
	t.Setenv("BACKOFF_FACTOR", "0.5")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for BACKOFF_FACTOR below 1")
	}
}
