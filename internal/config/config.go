package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-mcp/internal/weather"
	"github.com/i474232898/weather-mcp/internal/weather/providers"
)

// Server modes.
const (
	ModeStdio = "stdio"
	ModeHTTP  = "http"
)

// ErrMissingAPIKey is reported by Validate when no upstream key is configured.
var ErrMissingAPIKey = errors.New("OPENWEATHER_API_KEY is not set")

type AppConfig struct {
	OpenWeatherAPIKey string
	OpenWeatherURL    string
	GeoURL            string

	DefaultUnits string
	DefaultLang  string

	HTTPTimeout time.Duration
	// CacheTTL bounds the age of cached weather and forecasts. Geocoding never expires.
	CacheTTL time.Duration

	Mode string
	Port string

	DisplayTimezone *time.Location

	// WarmCities are fetched every WarmInterval to keep the cache hot.
	WarmCities   []string
	WarmInterval time.Duration

	// The upstream circuit opens after BreakerFailures consecutive faults
	// and probes again after BreakerTimeout.
	BreakerFailures int
	BreakerTimeout  time.Duration

	LogLevel string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherURL = strings.TrimSuffix(getenvDefault("OPENWEATHER_BASE_URL", providers.DefaultOpenWeatherBaseURL), "/")
	cfg.GeoURL = strings.TrimSuffix(getenvDefault("OPENWEATHER_GEO_URL", providers.DefaultOpenWeatherGeoURL), "/")

	units, err := weather.NormalizeUnits(os.Getenv("DEFAULT_UNITS"), weather.UnitsMetric)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_UNITS: %w", err)
	}
	cfg.DefaultUnits = units
	cfg.DefaultLang = getenvDefault("DEFAULT_LANG", "zh_cn")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", weather.DefaultCacheTTL); err != nil {
		return nil, err
	}

	cfg.Mode = strings.ToLower(getenvDefault("SERVER_MODE", ModeStdio))
	if cfg.Mode != ModeStdio && cfg.Mode != ModeHTTP {
		return nil, fmt.Errorf("invalid SERVER_MODE %q: want %s or %s", cfg.Mode, ModeStdio, ModeHTTP)
	}
	cfg.Port = getenvDefault("PORT", "8080")

	tz, err := time.LoadLocation(getenvDefault("DISPLAY_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}
	cfg.DisplayTimezone = tz

	cfg.WarmCities = splitList(os.Getenv("WARM_CITIES"))
	if cfg.WarmInterval, err = getenvDuration("WARM_INTERVAL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.WarmInterval <= 0 {
		return nil, fmt.Errorf("invalid WARM_INTERVAL: must be positive, got %s", cfg.WarmInterval)
	}

	cfg.BreakerFailures = getenvInt("BREAKER_FAILURES", 5)
	if cfg.BreakerFailures < 1 {
		return nil, fmt.Errorf("invalid BREAKER_FAILURES: must be at least 1, got %d", cfg.BreakerFailures)
	}
	if cfg.BreakerTimeout, err = getenvDuration("BREAKER_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.BreakerTimeout <= 0 {
		return nil, fmt.Errorf("invalid BREAKER_TIMEOUT: must be positive, got %s", cfg.BreakerTimeout)
	}

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	return cfg, nil
}

// Validate reports settings that are required before serving requests.
func (c *AppConfig) Validate() error {
	if c.OpenWeatherAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
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

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
