package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8091" {
		t.Errorf("Expected Port to be 8091, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.LedgerBackend != "file" {
		t.Errorf("Expected LedgerBackend to be file, got %s", cfg.LedgerBackend)
	}

	if cfg.Redis.Enabled {
		t.Error("Expected Redis to be disabled by default")
	}

	if cfg.RiskFreeRate != 0.05 {
		t.Errorf("Expected RiskFreeRate to be 0.05, got %f", cfg.RiskFreeRate)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("QT_CACHE_DIR", "/tmp/qt-cache")
	os.Setenv("QT_RISK_FREE_RATE", "0.03")
	os.Setenv("LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("QT_CACHE_DIR")
		os.Unsetenv("QT_RISK_FREE_RATE")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.CacheDir != "/tmp/qt-cache" {
		t.Errorf("Expected CacheDir to be /tmp/qt-cache, got %s", cfg.CacheDir)
	}

	if cfg.RiskFreeRate != 0.03 {
		t.Errorf("Expected RiskFreeRate to be 0.03, got %f", cfg.RiskFreeRate)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be debug, got %s", cfg.LogLevel)
	}
}

func TestValidatePostgresRequiresURL(t *testing.T) {
	os.Setenv("QT_LEDGER_BACKEND", "postgres")
	os.Unsetenv("DATABASE_URL")
	defer os.Unsetenv("QT_LEDGER_BACKEND")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when DATABASE_URL is missing for postgres backend, got nil")
	}
}

func TestValidateBadLedgerBackend(t *testing.T) {
	os.Setenv("QT_LEDGER_BACKEND", "dynamo")
	defer os.Unsetenv("QT_LEDGER_BACKEND")

	_, err := Load()
	if err == nil {
		t.Error("Expected error for unknown ledger backend, got nil")
	}
}
