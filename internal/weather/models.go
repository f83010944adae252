package weather

import (
	"maps"
	"slices"
	"time"
)

// Unit systems accepted by the tools. Kelvin is called "standard" upstream.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
	UnitsKelvin   = "kelvin"
)

// Coordinates is a point on the globe in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoLocation is the result of geocoding a free-text city name.
// LocalNames carries the provider's localized names keyed by language code.
type GeoLocation struct {
	Name       string            `json:"name"`
	Country    string            `json:"country"`
	State      string            `json:"state,omitempty"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	LocalNames map[string]string `json:"localNames,omitempty"`
}

// Place is the location subset embedded in weather and forecast responses.
type Place struct {
	Name        string      `json:"name"`
	Country     string      `json:"country"`
	Coordinates Coordinates `json:"coordinates"`
}

// Condition is the provider's description of the sky.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Wind is measured in m/s (metric, kelvin) or mph (imperial).
type Wind struct {
	Speed     float64 `json:"speed"`
	Direction int     `json:"direction"`
	Gust      float64 `json:"gust"`
}

// Conditions holds the measured values of a current-weather snapshot.
// Temperatures are stored unrounded; rounding happens when rendering.
type Conditions struct {
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feelsLike"`
	Humidity    int       `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	Visibility  float64   `json:"visibility"` // km
	UVIndex     float64   `json:"uvIndex"`
	Weather     Condition `json:"weather"`
	Wind        Wind      `json:"wind"`
}

// CurrentWeather is the normalized view of one upstream snapshot.
type CurrentWeather struct {
	Location  Place      `json:"location"`
	Units     string     `json:"units"`
	Current   Conditions `json:"current"`
	Timestamp time.Time  `json:"timestamp"` // always UTC
	Sunrise   time.Time  `json:"sunrise"`
	Sunset    time.Time  `json:"sunset"`
}

// TemperatureRange summarizes the samples of one forecast day.
type TemperatureRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// DayWind is the averaged wind of a forecast day.
type DayWind struct {
	Speed     float64 `json:"speed"`
	Direction int     `json:"direction"`
}

// HourlySample is one 3-hour step inside a forecast day.
type HourlySample struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	Weather     string    `json:"weather"`
	Icon        string    `json:"icon"`
}

// ForecastDay aggregates all samples sharing one calendar date.
type ForecastDay struct {
	Date        string           `json:"date"` // YYYY-MM-DD
	Temperature TemperatureRange `json:"temperature"`
	Weather     Condition        `json:"weather"`
	Humidity    int              `json:"humidity"`
	Wind        DayWind          `json:"wind"`
	Hourly      []HourlySample   `json:"hourly"`
}

// ForecastResponse is the normalized multi-day forecast.
// Forecast entries are ordered chronologically.
type ForecastResponse struct {
	Location    Place         `json:"location"`
	Units       string        `json:"units"`
	Forecast    []ForecastDay `json:"forecast"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// ForecastSample is a single raw 3-hour forecast step as reported by a provider,
// before it is grouped into days.
type ForecastSample struct {
	Time        time.Time
	Date        string // calendar date embedded in the sample, YYYY-MM-DD
	Temperature float64
	Humidity    float64
	WindSpeed   float64
	WindDeg     int
	Weather     Condition
}

// ForecastSeries is the provider's raw forecast: where it is and its ordered samples.
type ForecastSeries struct {
	Location Place
	Samples  []ForecastSample
}

func (g GeoLocation) clone() GeoLocation {
	g.LocalNames = maps.Clone(g.LocalNames)
	return g
}

func (f ForecastResponse) clone() ForecastResponse {
	f.Forecast = slices.Clone(f.Forecast)
	for i := range f.Forecast {
		f.Forecast[i].Hourly = slices.Clone(f.Forecast[i].Hourly)
	}
	return f
}
