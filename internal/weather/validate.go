package weather

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxForecastDays is the provider's horizon at 3-hour resolution.
	MaxForecastDays = 5
	// DefaultForecastDays is used when the caller does not ask for a count.
	DefaultForecastDays = 3
	// SamplesPerDay is the number of 3-hour steps in a day.
	SamplesPerDay = 8
	// MaxForecastSamples caps the upstream cnt parameter.
	MaxForecastSamples = 40
)

var validate = validator.New()

// ValidateCoordinates fails with a validation error unless lat is within
// [-90, 90] and lon within [-180, 180]. NaN and infinities never pass.
func ValidateCoordinates(lat, lon float64) error {
	if err := validate.Var(lat, "gte=-90,lte=90"); err != nil {
		return ValidationError("latitude must be between -90 and 90, got %v", lat)
	}
	if err := validate.Var(lon, "gte=-180,lte=180"); err != nil {
		return ValidationError("longitude must be between -180 and 180, got %v", lon)
	}
	return nil
}

// NormalizeUnits returns units lowercased, or def when units is empty.
func NormalizeUnits(units, def string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(units))
	if u == "" {
		u = def
	}
	switch u {
	case UnitsMetric, UnitsImperial, UnitsKelvin:
		return u, nil
	default:
		return "", ValidationError("units must be one of metric, imperial, kelvin, got %q", units)
	}
}

// ClampDays bounds a requested forecast length to [1, MaxForecastDays].
func ClampDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxForecastDays {
		return MaxForecastDays
	}
	return days
}

// SampleCount is the number of raw samples to request for days.
func SampleCount(days int) int {
	n := days * SamplesPerDay
	if n > MaxForecastSamples {
		return MaxForecastSamples
	}
	return n
}
