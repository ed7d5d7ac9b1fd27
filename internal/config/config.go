package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/storage"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level
	Port     string

	// Provider selects the upstream gateway: openweather or weatherapi.
	Provider          string
	OpenWeatherAPIKey string
	WeatherAPIKey     string

	HTTPTimeout time.Duration

	// Outbound rate limit shared by all upstream calls (0 = unlimited).
	UpstreamRPS   float64
	UpstreamBurst int

	Storage storage.Config

	SearchLimit      int
	SearchSessionTTL time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "err", err)
	}
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.Provider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", providers.OpenWeather))
	cfg.OpenWeatherAPIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	cfg.WeatherAPIKey = strings.TrimSpace(os.Getenv("WEATHERAPI_API_KEY"))
	switch cfg.Provider {
	case providers.OpenWeather:
		if cfg.OpenWeatherAPIKey == "" {
			return nil, fmt.Errorf("OPENWEATHER_API_KEY is required for provider %q", cfg.Provider)
		}
	case providers.WeatherAPI:
		if cfg.WeatherAPIKey == "" {
			return nil, fmt.Errorf("WEATHERAPI_API_KEY is required for provider %q", cfg.Provider)
		}
	default:
		return nil, fmt.Errorf("invalid WEATHER_PROVIDER %q (allowed: %s, %s)", cfg.Provider, providers.OpenWeather, providers.WeatherAPI)
	}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(getenvDefault("UPSTREAM_RPS", "5"), 64)
	if err != nil || rps < 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_RPS %q", os.Getenv("UPSTREAM_RPS"))
	}
	cfg.UpstreamRPS = rps
	cfg.UpstreamBurst = getenvInt("UPSTREAM_BURST", 5)

	cfg.Storage = storage.Config{
		Driver:     strings.ToLower(getenvDefault("STORAGE_DRIVER", storage.DriverFile)),
		FilePath:   getenvDefault("STORAGE_PATH", "data/storage.json"),
		SQLitePath: getenvDefault("SQLITE_PATH", "data/weather.db"),
		RedisURL:   getenvDefault("REDIS_URL", "redis://localhost:6379/0"),
		KeyPrefix:  getenvDefault("REDIS_KEY_PREFIX", "weather-dashboard:"),
	}
	switch cfg.Storage.Driver {
	case storage.DriverFile, storage.DriverSQLite, storage.DriverRedis, storage.DriverMemory:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q (allowed: file, sqlite, redis, memory)", cfg.Storage.Driver)
	}

	cfg.SearchLimit = getenvInt("SEARCH_LIMIT", 5)
	if cfg.SearchLimit <= 0 {
		return nil, fmt.Errorf("SEARCH_LIMIT must be positive")
	}
	if cfg.SearchSessionTTL, err = getenvDuration("SEARCH_SESSION_TTL", 10*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
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

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
