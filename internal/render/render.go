package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-mcp/internal/common"
	"github.com/i474232898/weather-mcp/internal/weather"
)

// Kinds accepted by Render.
const (
	KindCurrent  = "current"
	KindForecast = "forecast"
)

var emoji = map[string]string{
	"01d": "☀️", "01n": "🌙",
	"02d": "⛅", "02n": "☁️",
	"03d": "☁️", "03n": "☁️",
	"04d": "☁️", "04n": "☁️",
	"09d": "🌧️", "09n": "🌧️",
	"10d": "🌦️", "10n": "🌧️",
	"11d": "⛈️", "11n": "⛈️",
	"13d": "❄️", "13n": "❄️",
	"50d": "🌫️", "50n": "🌫️",
}

// WeatherEmoji maps a provider icon code to an emoji, with a generic
// fallback for unknown codes.
func WeatherEmoji(icon string) string {
	if e, ok := emoji[icon]; ok {
		return e
	}
	return "🌤️"
}

// Renderer turns normalized weather data into human-readable text.
// It never touches the network or the cache.
type Renderer struct {
	loc      locale
	location *time.Location
}

// New returns a Renderer for the lang tag. Timestamps are shown in tz;
// a nil tz means time.Local.
func New(lang string, tz *time.Location) *Renderer {
	if tz == nil {
		tz = time.Local
	}
	return &Renderer{loc: localeFor(lang), location: tz}
}

// WithLang returns a copy of r speaking lang, keeping the time zone.
func (r *Renderer) WithLang(lang string) *Renderer {
	return &Renderer{loc: localeFor(lang), location: r.location}
}

// WindDirection names the compass sector of degrees in the renderer's language.
func (r *Renderer) WindDirection(degrees int) string {
	return r.loc.windDirection(degrees)
}

// Render dispatches on kind. Unknown kinds yield a fixed notice, not an error.
func (r *Renderer) Render(kind string, data interface{}) string {
	switch kind {
	case KindCurrent:
		if w, ok := data.(weather.CurrentWeather); ok {
			return r.Current(w)
		}
	case KindForecast:
		if f, ok := data.(weather.ForecastResponse); ok {
			return r.Forecast(f)
		}
	}
	return r.loc.unknownDataKind
}

// Current renders a current-weather snapshot.
func (r *Renderer) Current(w weather.CurrentWeather) string {
	l := r.loc
	temp, speed := unitSuffixes(w.Units)
	c := w.Current

	var b strings.Builder
	fmt.Fprintf(&b, "🌍 %s\n", placeName(w.Location))
	fmt.Fprintf(&b, "📅 %s\n\n", r.at(w.Timestamp, l.dateTimeLayout))
	fmt.Fprintf(&b, "🌡️ %s: %d%s (%s %d%s)\n", l.temperature, common.Round(c.Temperature), temp, l.feelsLike, common.Round(c.FeelsLike), temp)
	fmt.Fprintf(&b, "%s %s: %s\n", WeatherEmoji(c.Weather.Icon), l.weather, c.Weather.Description)
	fmt.Fprintf(&b, "💧 %s: %d%%\n", l.humidity, c.Humidity)
	fmt.Fprintf(&b, "🌬️ %s: %s %s (%s)\n", l.wind, num(c.Wind.Speed), speed, l.windDirection(c.Wind.Direction))
	fmt.Fprintf(&b, "📊 %s: %s hPa\n", l.pressure, num(c.Pressure))
	fmt.Fprintf(&b, "👁️ %s: %s km\n", l.visibility, num(c.Visibility))
	fmt.Fprintf(&b, "🌅 %s: %s\n", l.sunrise, r.at(w.Sunrise, l.timeLayout))
	fmt.Fprintf(&b, "🌇 %s: %s", l.sunset, r.at(w.Sunset, l.timeLayout))
	return b.String()
}

// Forecast renders a multi-day forecast. Day labels are positional: the first
// entry is always today and the second tomorrow, whatever their dates.
func (r *Renderer) Forecast(f weather.ForecastResponse) string {
	l := r.loc
	temp, speed := unitSuffixes(f.Units)

	var b strings.Builder
	fmt.Fprintf(&b, "🌍 %s - %s\n\n", placeName(f.Location), l.forecastTitle(len(f.Forecast)))
	for i, day := range f.Forecast {
		date, err := time.Parse("2006-01-02", day.Date)
		shown := day.Date
		if err == nil {
			shown = date.Format(l.dateLayout)
		}

		fmt.Fprintf(&b, "📅 %s (%s)\n", r.dayLabel(i, date, err == nil), shown)
		fmt.Fprintf(&b, "🌡️ %d%s ~ %d%s\n", common.Round(day.Temperature.Min), temp, common.Round(day.Temperature.Max), temp)
		fmt.Fprintf(&b, "%s %s\n", WeatherEmoji(day.Weather.Icon), day.Weather.Description)
		fmt.Fprintf(&b, "💧 %s: %d%%\n", l.humidity, day.Humidity)
		fmt.Fprintf(&b, "🌬️ %s: %s %s\n\n", l.wind, num(day.Wind.Speed), speed)
	}
	return b.String()
}

// Comparison renders several current snapshots, in the given order.
func (r *Renderer) Comparison(items []weather.CurrentWeather) string {
	l := r.loc

	var b strings.Builder
	fmt.Fprintf(&b, "🌍 %s\n\n", l.compareTitle(len(items)))
	for i, w := range items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		temp, speed := unitSuffixes(w.Units)
		fmt.Fprintf(&b, "📍 %s\n", placeName(w.Location))
		fmt.Fprintf(&b, "🌡️ %d%s (%s)\n", common.Round(w.Current.Temperature), temp, w.Current.Weather.Description)
		fmt.Fprintf(&b, "💧 %s: %d%% | 🌬️ %s: %s %s", l.humidity, w.Current.Humidity, l.wind, num(w.Current.Wind.Speed), speed)
	}
	return b.String()
}

// Cities renders geocoding matches. A single match uses the short form.
func (r *Renderer) Cities(matches []weather.GeoLocation) string {
	l := r.loc
	if len(matches) == 1 {
		m := matches[0]
		return fmt.Sprintf("🔍 %s: %s\n📍 %s: %s, %s", l.foundCity, geoName(m), l.coordinates, num(m.Lat), num(m.Lon))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 %s\n", l.foundCities(len(matches)))
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. %s (%s, %s)\n", i+1, geoName(m), num(m.Lat), num(m.Lon))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// FormatError maps an error to a user-facing message.
func (r *Renderer) FormatError(err error) string {
	l := r.loc

	var werr *weather.Error
	if !errors.As(err, &werr) {
		return "❌ " + err.Error()
	}

	switch werr.Kind {
	case weather.KindAuth:
		return "❌ " + l.errAuth
	case weather.KindRateLimit:
		return "❌ " + l.errRateLimit
	case weather.KindNotFound:
		if werr.Message == "" {
			return "❌ " + l.errNotFound
		}
		return "❌ " + l.errNotFound + ": " + werr.Message
	case weather.KindValidation:
		return "❌ " + werr.Message
	default:
		if werr.StatusCode == 0 {
			return "❌ " + l.errNetwork
		}
		return "❌ " + l.errUpstream(werr.StatusCode, werr.Message)
	}
}

func (r *Renderer) dayLabel(index int, date time.Time, ok bool) string {
	switch {
	case index == 0:
		return r.loc.today
	case index == 1:
		return r.loc.tomorrow
	case ok:
		return r.loc.weekday(date.Weekday())
	default:
		return ""
	}
}

func (r *Renderer) at(t time.Time, layout string) string {
	return t.In(r.location).Format(layout)
}

func unitSuffixes(units string) (temp, speed string) {
	switch units {
	case weather.UnitsImperial:
		return "°F", "mph"
	case weather.UnitsKelvin:
		return "K", "m/s"
	default:
		return "°C", "m/s"
	}
}

func placeName(p weather.Place) string {
	if p.Country == "" {
		return p.Name
	}
	return p.Name + ", " + p.Country
}

func geoName(g weather.GeoLocation) string {
	parts := []string{g.Name}
	if g.State != "" {
		parts = append(parts, g.State)
	}
	if g.Country != "" {
		parts = append(parts, g.Country)
	}
	return strings.Join(parts, ", ")
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
