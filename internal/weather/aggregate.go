package weather

import (
	"time"

	"github.com/i474232898/weather-mcp/internal/common"
)

// AggregateForecast groups raw samples by their embedded calendar date and
// summarizes the first days dates. Dates keep the order in which they first
// appear, which is chronological for a well-formed series. Fewer dates than
// days yields a shorter forecast.
func AggregateForecast(series ForecastSeries, days int, units string, now time.Time) ForecastResponse {
	var order []string
	byDate := make(map[string][]ForecastSample)

	for _, s := range series.Samples {
		date := s.Date
		if date == "" {
			date = s.Time.UTC().Format("2006-01-02")
		}
		if _, ok := byDate[date]; !ok {
			order = append(order, date)
		}
		byDate[date] = append(byDate[date], s)
	}

	if len(order) > days {
		order = order[:days]
	}

	forecast := make([]ForecastDay, 0, len(order))
	for _, date := range order {
		forecast = append(forecast, aggregateDay(date, byDate[date]))
	}

	return ForecastResponse{
		Location:    series.Location,
		Units:       units,
		Forecast:    forecast,
		GeneratedAt: now.UTC(),
	}
}

func aggregateDay(date string, samples []ForecastSample) ForecastDay {
	first := samples[0]
	minT, maxT := first.Temperature, first.Temperature

	var sumTemp, sumHumidity, sumWind float64
	hourly := make([]HourlySample, 0, len(samples))

	for _, s := range samples {
		if s.Temperature < minT {
			minT = s.Temperature
		}
		if s.Temperature > maxT {
			maxT = s.Temperature
		}
		sumTemp += s.Temperature
		sumHumidity += s.Humidity
		sumWind += s.WindSpeed

		hourly = append(hourly, HourlySample{
			Time:        s.Time.UTC(),
			Temperature: s.Temperature,
			Weather:     s.Weather.Description,
			Icon:        s.Weather.Icon,
		})
	}

	n := float64(len(samples))

	return ForecastDay{
		Date: date,
		Temperature: TemperatureRange{
			Min: minT,
			Max: maxT,
			Avg: float64(common.Round(sumTemp / n)),
		},
		// The day's weather is the first sample's, not a majority vote.
		Weather:  first.Weather,
		Humidity: common.Round(sumHumidity / n),
		Wind: DayWind{
			Speed:     float64(common.Round(sumWind / n)),
			Direction: first.WindDeg,
		},
		Hourly: hourly,
	}
}
