package config

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-mcp/internal/weather/providers"
)

var allKeys = []string{
	"OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL", "OPENWEATHER_GEO_URL",
	"DEFAULT_UNITS", "DEFAULT_LANG", "HTTP_TIMEOUT", "CACHE_TTL",
	"SERVER_MODE", "PORT", "DISPLAY_TIMEZONE", "WARM_CITIES", "WARM_INTERVAL",
	"BREAKER_FAILURES", "BREAKER_TIMEOUT", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, providers.DefaultOpenWeatherBaseURL, cfg.OpenWeatherURL)
	assert.Equal(t, providers.DefaultOpenWeatherGeoURL, cfg.GeoURL)
	assert.Equal(t, "metric", cfg.DefaultUnits)
	assert.Equal(t, "zh_cn", cfg.DefaultLang)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Local, cfg.DisplayTimezone)
	assert.Empty(t, cfg.WarmCities)
	assert.Equal(t, 10*time.Minute, cfg.WarmInterval)
	assert.Equal(t, 5, cfg.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, "info", cfg.LogLevel)

	assert.True(t, errors.Is(cfg.Validate(), ErrMissingAPIKey))
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "secret")
	t.Setenv("OPENWEATHER_BASE_URL", "http://localhost:9000/data/2.5/")
	t.Setenv("DEFAULT_UNITS", "Imperial")
	t.Setenv("DEFAULT_LANG", "en")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SERVER_MODE", "HTTP")
	t.Setenv("PORT", "3000")
	t.Setenv("DISPLAY_TIMEZONE", "Asia/Shanghai")
	t.Setenv("WARM_CITIES", " Beijing, ,Shanghai ")
	t.Setenv("WARM_INTERVAL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:9000/data/2.5", cfg.OpenWeatherURL)
	assert.Equal(t, "imperial", cfg.DefaultUnits)
	assert.Equal(t, "en", cfg.DefaultLang)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, ModeHTTP, cfg.Mode)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "Asia/Shanghai", cfg.DisplayTimezone.String())
	assert.Equal(t, []string{"Beijing", "Shanghai"}, cfg.WarmCities)
	assert.Equal(t, 5*time.Minute, cfg.WarmInterval)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"DEFAULT_UNITS":    "rankine",
		"HTTP_TIMEOUT":     "soon",
		"CACHE_TTL":        "10 minutes",
		"SERVER_MODE":      "grpc",
		"DISPLAY_TIMEZONE": "Mars/Olympus",
		"WARM_INTERVAL":    "0s",
		"BREAKER_FAILURES": "-1",
		"BREAKER_TIMEOUT":  "-5s",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
