package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might affect defaults
	for _, key := range []string{"MARKET_PROVIDER", "COINGECKO_URL", "COINPAPRIKA_URL", "STORAGE_BACKEND", "DATABASE_URL", "HTTP_TIMEOUT", "HTTP_PORT", "REDIS_DB"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.MarketProvider != "coingecko" {
		t.Errorf("MarketProvider = %q, want coingecko", cfg.MarketProvider)
	}
	if cfg.CoinGeckoURL != "https://api.coingecko.com/api/v3" {
		t.Errorf("CoinGeckoURL = %q, want default", cfg.CoinGeckoURL)
	}
	if cfg.CoinPaprikaURL != "https://api.coinpaprika.com/v1" {
		t.Errorf("CoinPaprikaURL = %q, want default", cfg.CoinPaprikaURL)
	}
	if cfg.StorageBackend != "file" {
		t.Errorf("StorageBackend = %q, want file", cfg.StorageBackend)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MARKET_PROVIDER", "coinpaprika")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/testdb")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_DB", "4")

	cfg := Load()

	if cfg.MarketProvider != "coinpaprika" {
		t.Errorf("MarketProvider = %q, want override", cfg.MarketProvider)
	}
	if cfg.StorageBackend != "postgres" {
		t.Errorf("StorageBackend = %q, want postgres", cfg.StorageBackend)
	}
	if cfg.DatabaseURL != "postgres://localhost/testdb" {
		t.Errorf("DatabaseURL = %q, want override", cfg.DatabaseURL)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("HTTPTimeout = %v, want 3s", cfg.HTTPTimeout)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.RedisDB != 4 {
		t.Errorf("RedisDB = %d, want 4", cfg.RedisDB)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want default on parse failure", cfg.HTTPTimeout)
	}
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want default on parse failure", cfg.RedisDB)
	}
}
