package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// DefaultQuery is looked up once when the app starts.
	DefaultQuery string

	GeocodeBaseURL  string
	ForecastBaseURL string

	// HTTPTimeout bounds each upstream request (0 = transport default, none).
	HTTPTimeout time.Duration

	// BreakerFailures opens the upstream circuit after that many consecutive
	// failures (0 = disabled).
	BreakerFailures uint32

	// RefreshInterval re-runs the last lookup periodically (0 = disabled).
	RefreshInterval time.Duration

	// PrefsDB is the SQLite file holding the theme preference. Empty keeps it in memory.
	PrefsDB string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.DefaultQuery = getenvDefault("DEFAULT_QUERY", "New York")
	cfg.GeocodeBaseURL = getenvDefault("GEOCODE_BASE_URL", "https://geocoding-api.open-meteo.com/v1")
	cfg.ForecastBaseURL = getenvDefault("FORECAST_BASE_URL", "https://api.open-meteo.com/v1")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "text")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "0s"); err != nil {
		return nil, err
	}

	failures := getenvInt("BREAKER_FAILURES", 0)
	if failures < 0 {
		return nil, fmt.Errorf("invalid BREAKER_FAILURES: must not be negative")
	}
	cfg.BreakerFailures = uint32(failures)

	// An explicitly empty PREFS_DB selects the in-memory store.
	if v, ok := os.LookupEnv("PREFS_DB"); ok {
		cfg.PrefsDB = v
	} else {
		cfg.PrefsDB = "prefs.db"
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
