package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Market data
	MarketProvider string // "coingecko" or "coinpaprika"
	CoinGeckoURL   string
	CoinPaprikaURL string
	HTTPTimeout    time.Duration

	// Ledger persistence
	StorageBackend string // "file", "postgres" or "redis"
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SnapshotDir    string

	// Background revaluation
	RepriceInterval time.Duration

	// HTTP API
	HTTPPort string
}

// Load reads configuration from a local .env file (if present) and the
// environment, with sensible defaults for a single-user local setup.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "error", err)
	}

	return Config{
		MarketProvider:  envOrDefault("MARKET_PROVIDER", "coingecko"),
		CoinGeckoURL:    envOrDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		CoinPaprikaURL:  envOrDefault("COINPAPRIKA_URL", "https://api.coinpaprika.com/v1"),
		HTTPTimeout:     envOrDefaultDuration("HTTP_TIMEOUT", 10*time.Second),
		StorageBackend:  envOrDefault("STORAGE_BACKEND", "file"),
		DatabaseURL:     envOrDefault("DATABASE_URL", ""),
		RedisAddr:       envOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   envOrDefault("REDIS_PASSWORD", ""),
		RedisDB:         envOrDefaultInt("REDIS_DB", 0),
		SnapshotDir:     envOrDefault("SNAPSHOT_DIR", defaultSnapshotDir()),
		RepriceInterval: envOrDefaultDuration("REPRICE_INTERVAL", 15*time.Minute),
		HTTPPort:        envOrDefault("HTTP_PORT", "8080"),
	}
}

// defaultSnapshotDir keeps ledger snapshots under the user's config
// directory, falling back to a dot directory in the working directory.
func defaultSnapshotDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".cryptopal"
	}
	return base + string(os.PathSeparator) + "cryptopal"
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
