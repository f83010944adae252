package weather

import (
	"context"
)

// Query identifies the point, unit system and language of a weather request.
type Query struct {
	Lat   float64
	Lon   float64
	Units string
	Lang  string
}

// Provider abstracts the upstream weather service (OpenWeatherMap).
// Implementations must return *Error values so callers can switch on Kind.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, name string, limit int) ([]GeoLocation, error)
	Current(ctx context.Context, q Query) (CurrentWeather, error)
	Forecast(ctx context.Context, q Query, count int) (ForecastSeries, error)
}

// Cache is the contract the query caches must satisfy.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Put(key string, v V)
	Len() int
}
