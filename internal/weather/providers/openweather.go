package providers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-mcp/internal/weather"
)

const (
	DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"
	DefaultOpenWeatherGeoURL  = "https://api.openweathermap.org/geo/1.0"
)

// OpenWeatherConfig holds the endpoints and credentials of OpenWeatherMap.
type OpenWeatherConfig struct {
	APIKey  string
	BaseURL string
	GeoURL  string
	Breaker BreakerConfig
}

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	geoURL  string
	client  *resty.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider wraps client; its Timeout bounds every upstream call.
func NewOpenWeatherProvider(client *http.Client, cfg OpenWeatherConfig) *OpenWeatherProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenWeatherBaseURL
	}
	if cfg.GeoURL == "" {
		cfg.GeoURL = DefaultOpenWeatherGeoURL
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker.Name = "openweather"
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		geoURL:  strings.TrimRight(cfg.GeoURL, "/"),
		client:  resty.NewWithClient(client).SetHeader("Accept", "application/json"),
		circuit: newBreaker(cfg.Breaker),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Geocode looks name up via /direct and returns at most limit matches.
func (p *OpenWeatherProvider) Geocode(ctx context.Context, name string, limit int) ([]weather.GeoLocation, error) {
	if p.apiKey == "" {
		return nil, errMissingKey
	}

	var payload []owGeoMatch
	err := getJSON(ctx, p.client, p.circuit, p.geoURL+"/direct", map[string]string{
		"q":     name,
		"limit": strconv.Itoa(limit),
		"appid": p.apiKey,
	}, &payload)
	if err != nil {
		return nil, err
	}

	out := make([]weather.GeoLocation, 0, len(payload))
	for _, m := range payload {
		out = append(out, weather.GeoLocation{
			Name:       m.Name,
			Country:    m.Country,
			State:      m.State,
			Lat:        m.Lat,
			Lon:        m.Lon,
			LocalNames: m.LocalNames,
		})
	}
	return out, nil
}

// Current fetches /weather for the query point.
func (p *OpenWeatherProvider) Current(ctx context.Context, q weather.Query) (weather.CurrentWeather, error) {
	if p.apiKey == "" {
		return weather.CurrentWeather{}, errMissingKey
	}

	var payload owCurrent
	if err := getJSON(ctx, p.client, p.circuit, p.baseURL+"/weather", p.params(q), &payload); err != nil {
		return weather.CurrentWeather{}, err
	}

	w := normalizeCurrent(payload)
	w.Units = q.Units
	return w, nil
}

// Forecast fetches count 3-hour samples from /forecast.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, q weather.Query, count int) (weather.ForecastSeries, error) {
	if p.apiKey == "" {
		return weather.ForecastSeries{}, errMissingKey
	}

	params := p.params(q)
	params["cnt"] = strconv.Itoa(count)

	var payload owForecast
	if err := getJSON(ctx, p.client, p.circuit, p.baseURL+"/forecast", params, &payload); err != nil {
		return weather.ForecastSeries{}, err
	}
	return normalizeForecast(payload), nil
}

func (p *OpenWeatherProvider) params(q weather.Query) map[string]string {
	return map[string]string{
		"lat":   strconv.FormatFloat(q.Lat, 'f', -1, 64),
		"lon":   strconv.FormatFloat(q.Lon, 'f', -1, 64),
		"appid": p.apiKey,
		"units": upstreamUnits(q.Units),
		"lang":  q.Lang,
	}
}

var errMissingKey = weather.AuthError(0, "openweather api key is not configured")

// upstreamUnits translates our unit names to OpenWeatherMap's.
func upstreamUnits(units string) string {
	if units == weather.UnitsKelvin {
		return "standard"
	}
	return units
}
