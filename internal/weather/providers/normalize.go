package providers

import (
	"time"

	"github.com/i474232898/weather-mcp/internal/weather"
)

type owCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owCoord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type owGeoMatch struct {
	Name       string            `json:"name"`
	LocalNames map[string]string `json:"local_names"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Country    string            `json:"country"`
	State      string            `json:"state"`
}

type owCurrent struct {
	Coord   owCoord       `json:"coord"`
	Weather []owCondition `json:"weather"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  float64 `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Visibility float64 `json:"visibility"` // meters
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
		Gust  float64 `json:"gust"`
	} `json:"wind"`
	UVI float64 `json:"uvi"`
	Dt  int64   `json:"dt"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Name string `json:"name"`
}

type owForecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []owCondition `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	DtTxt string `json:"dt_txt"`
}

type owForecast struct {
	List []owForecastItem `json:"list"`
	City struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Coord   owCoord `json:"coord"`
	} `json:"city"`
}

func firstCondition(items []owCondition) weather.Condition {
	if len(items) == 0 {
		return weather.Condition{}
	}
	return weather.Condition{
		Main:        items[0].Main,
		Description: items[0].Description,
		Icon:        items[0].Icon,
	}
}

func unixUTC(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// normalizeCurrent reshapes a /weather payload. Values are kept as reported;
// only visibility is converted from meters to kilometers.
func normalizeCurrent(p owCurrent) weather.CurrentWeather {
	return weather.CurrentWeather{
		Location: weather.Place{
			Name:        p.Name,
			Country:     p.Sys.Country,
			Coordinates: weather.Coordinates{Lat: p.Coord.Lat, Lon: p.Coord.Lon},
		},
		Current: weather.Conditions{
			Temperature: p.Main.Temp,
			FeelsLike:   p.Main.FeelsLike,
			Humidity:    p.Main.Humidity,
			Pressure:    p.Main.Pressure,
			Visibility:  p.Visibility / 1000,
			UVIndex:     p.UVI,
			Weather:     firstCondition(p.Weather),
			Wind: weather.Wind{
				Speed:     p.Wind.Speed,
				Direction: p.Wind.Deg,
				Gust:      p.Wind.Gust,
			},
		},
		Timestamp: unixUTC(p.Dt),
		Sunrise:   unixUTC(p.Sys.Sunrise),
		Sunset:    unixUTC(p.Sys.Sunset),
	}
}

// normalizeForecast turns a /forecast payload into ordered samples. The
// calendar date comes from dt_txt when present, otherwise from dt in UTC.
func normalizeForecast(p owForecast) weather.ForecastSeries {
	samples := make([]weather.ForecastSample, 0, len(p.List))
	for _, item := range p.List {
		ts := unixUTC(item.Dt)
		date := ts.Format("2006-01-02")
		if len(item.DtTxt) >= 10 {
			date = item.DtTxt[:10]
		}
		samples = append(samples, weather.ForecastSample{
			Time:        ts,
			Date:        date,
			Temperature: item.Main.Temp,
			Humidity:    item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
			WindDeg:     item.Wind.Deg,
			Weather:     firstCondition(item.Weather),
		})
	}

	return weather.ForecastSeries{
		Location: weather.Place{
			Name:        p.City.Name,
			Country:     p.City.Country,
			Coordinates: weather.Coordinates{Lat: p.City.Coord.Lat, Lon: p.City.Coord.Lon},
		},
		Samples: samples,
	}
}
