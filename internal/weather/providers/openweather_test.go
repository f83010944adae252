package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-mcp/internal/weather"
)

const currentBody = `{
  "coord": {"lon": 116.3972, "lat": 39.9075},
  "weather": [{"id": 800, "main": "Clear", "description": "晴", "icon": "01d"}],
  "main": {"temp": 21.56, "feels_like": 20.9, "pressure": 1012, "humidity": 33},
  "visibility": 10000,
  "wind": {"speed": 3.4, "deg": 170, "gust": 5.1},
  "dt": 1714550400,
  "sys": {"country": "CN", "sunrise": 1714512000, "sunset": 1714561200},
  "name": "Beijing"
}`

const forecastBody = `{
  "list": [
    {"dt": 1714564800, "main": {"temp": 10.2, "humidity": 40}, "weather": [{"main": "Clouds", "description": "多云", "icon": "03d"}], "wind": {"speed": 2.0, "deg": 90}, "dt_txt": "2024-05-01 12:00:00"},
    {"dt": 1714575600, "main": {"temp": 13.9, "humidity": 50}, "weather": [{"main": "Rain", "description": "小雨", "icon": "10d"}], "wind": {"speed": 3.0, "deg": 100}, "dt_txt": "2024-05-01 15:00:00"},
    {"dt": 1714608000, "main": {"temp": 8.0, "humidity": 70}, "weather": [{"main": "Clear", "description": "晴", "icon": "01n"}], "wind": {"speed": 1.0, "deg": 180}, "dt_txt": "2024-05-02 00:00:00"}
  ],
  "city": {"name": "Beijing", "country": "CN", "coord": {"lat": 39.9075, "lon": 116.3972}}
}`

type recorded struct {
	path  string
	query url.Values
}

func newUpstream(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32, chan recorded) {
	t.Helper()
	var hits atomic.Int32
	reqs := make(chan recorded, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case reqs <- recorded{path: r.URL.Path, query: r.URL.Query()}:
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits, reqs
}

func newTestProvider(srv *httptest.Server) *OpenWeatherProvider {
	return NewOpenWeatherProvider(srv.Client(), OpenWeatherConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/data/2.5",
		GeoURL:  srv.URL + "/geo/1.0",
	})
}

func TestCurrent_NormalizesPayload(t *testing.T) {
	srv, _, reqs := newUpstream(t, http.StatusOK, currentBody)
	p := newTestProvider(srv)

	w, err := p.Current(context.Background(), weather.Query{Lat: 39.9075, Lon: 116.3972, Units: "metric", Lang: "zh_cn"})
	require.NoError(t, err)

	req := <-reqs
	assert.Equal(t, "/data/2.5/weather", req.path)
	assert.Equal(t, "39.9075", req.query.Get("lat"))
	assert.Equal(t, "116.3972", req.query.Get("lon"))
	assert.Equal(t, "test-key", req.query.Get("appid"))
	assert.Equal(t, "metric", req.query.Get("units"))
	assert.Equal(t, "zh_cn", req.query.Get("lang"))

	assert.Equal(t, "Beijing", w.Location.Name)
	assert.Equal(t, "CN", w.Location.Country)
	assert.Equal(t, 21.56, w.Current.Temperature, "temperature must be stored unrounded")
	assert.Equal(t, 20.9, w.Current.FeelsLike)
	assert.Equal(t, 33, w.Current.Humidity)
	assert.Equal(t, 10.0, w.Current.Visibility)
	assert.Equal(t, "晴", w.Current.Weather.Description)
	assert.Equal(t, 170, w.Current.Wind.Direction)
	assert.Equal(t, 5.1, w.Current.Wind.Gust)
	assert.Equal(t, time.Unix(1714550400, 0).UTC(), w.Timestamp)
	assert.Equal(t, time.Unix(1714561200, 0).UTC(), w.Sunset)
}

func TestCurrent_KelvinIsStandardUpstream(t *testing.T) {
	srv, _, reqs := newUpstream(t, http.StatusOK, currentBody)
	p := newTestProvider(srv)

	w, err := p.Current(context.Background(), weather.Query{Lat: 1, Lon: 2, Units: weather.UnitsKelvin, Lang: "en"})
	require.NoError(t, err)

	assert.Equal(t, "standard", (<-reqs).query.Get("units"))
	assert.Equal(t, weather.UnitsKelvin, w.Units)
}

func TestForecast_SendsCountAndKeepsEmbeddedDates(t *testing.T) {
	srv, _, reqs := newUpstream(t, http.StatusOK, forecastBody)
	p := newTestProvider(srv)

	series, err := p.Forecast(context.Background(), weather.Query{Lat: 39.9, Lon: 116.4, Units: "metric", Lang: "en"}, 40)
	require.NoError(t, err)

	req := <-reqs
	assert.Equal(t, "/data/2.5/forecast", req.path)
	assert.Equal(t, "40", req.query.Get("cnt"))

	require.Len(t, series.Samples, 3)
	assert.Equal(t, "2024-05-01", series.Samples[0].Date)
	assert.Equal(t, "2024-05-02", series.Samples[2].Date)
	assert.Equal(t, "Beijing", series.Location.Name)
}

func TestGeocode_ReturnsMatches(t *testing.T) {
	body := `[{"name": "Beijing", "local_names": {"zh": "北京市", "en": "Beijing"}, "lat": 39.9, "lon": 116.4, "country": "CN"}]`
	srv, _, reqs := newUpstream(t, http.StatusOK, body)
	p := newTestProvider(srv)

	matches, err := p.Geocode(context.Background(), "北京", 1)
	require.NoError(t, err)

	req := <-reqs
	assert.Equal(t, "/geo/1.0/direct", req.path)
	assert.Equal(t, "北京", req.query.Get("q"))
	assert.Equal(t, "1", req.query.Get("limit"))

	require.Len(t, matches, 1)
	assert.Equal(t, "北京市", matches[0].LocalNames["zh"])
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		kind   weather.Kind
		target error
	}{
		{http.StatusUnauthorized, weather.KindAuth, weather.ErrAuth},
		{http.StatusNotFound, weather.KindNotFound, weather.ErrNotFound},
		{http.StatusTooManyRequests, weather.KindRateLimit, weather.ErrRateLimit},
		{http.StatusBadGateway, weather.KindUpstream, weather.ErrUpstream},
		{http.StatusBadRequest, weather.KindUpstream, weather.ErrUpstream},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv, _, _ := newUpstream(t, tc.status, `{"cod": 1, "message": "boom"}`)
			p := newTestProvider(srv)

			_, err := p.Current(context.Background(), weather.Query{Units: "metric", Lang: "en"})
			require.Error(t, err)
			assert.Equal(t, tc.kind, weather.KindOf(err))
			assert.True(t, errors.Is(err, tc.target))
			assert.Equal(t, tc.status, weather.StatusOf(err))
		})
	}
}

func TestMalformedPayloadIsUpstreamError(t *testing.T) {
	srv, _, _ := newUpstream(t, http.StatusOK, `{"list": "nope"`)
	p := newTestProvider(srv)

	_, err := p.Forecast(context.Background(), weather.Query{Units: "metric"}, 8)
	require.Error(t, err)
	assert.Equal(t, weather.KindUpstream, weather.KindOf(err))
}

func TestTimeoutIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	p := NewOpenWeatherProvider(&http.Client{Timeout: 50 * time.Millisecond}, OpenWeatherConfig{
		APIKey:  "k",
		BaseURL: srv.URL,
		GeoURL:  srv.URL,
	})

	_, err := p.Current(context.Background(), weather.Query{Units: "metric"})
	require.Error(t, err)
	assert.Equal(t, weather.KindUpstream, weather.KindOf(err))
}

func TestMissingKeyFailsWithoutNetwork(t *testing.T) {
	srv, hits, _ := newUpstream(t, http.StatusOK, currentBody)
	p := NewOpenWeatherProvider(srv.Client(), OpenWeatherConfig{BaseURL: srv.URL, GeoURL: srv.URL})

	_, err := p.Current(context.Background(), weather.Query{Units: "metric"})
	require.Error(t, err)
	assert.Equal(t, weather.KindAuth, weather.KindOf(err))
	assert.Zero(t, hits.Load())
}

func TestBreakerOpensOnlyOnUpstreamFaults(t *testing.T) {
	t.Run("not found does not trip", func(t *testing.T) {
		srv, hits, _ := newUpstream(t, http.StatusNotFound, `{"message": "city not found"}`)
		p := newTestProvider(srv)

		for i := 0; i < 8; i++ {
			_, err := p.Current(context.Background(), weather.Query{Units: "metric"})
			assert.Equal(t, weather.KindNotFound, weather.KindOf(err))
		}
		assert.EqualValues(t, 8, hits.Load())
	})

	t.Run("server errors trip", func(t *testing.T) {
		srv, hits, _ := newUpstream(t, http.StatusInternalServerError, `{}`)
		p := newTestProvider(srv)

		for i := 0; i < 7; i++ {
			_, err := p.Current(context.Background(), weather.Query{Units: "metric"})
			assert.Equal(t, weather.KindUpstream, weather.KindOf(err))
		}
		assert.EqualValues(t, 5, hits.Load(), "breaker should stop calls after 5 consecutive failures")
	})
}

func TestBreakerIgnoresCancelledCallers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lat") == "1" {
			<-r.Context().Done()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(currentBody))
	}))
	t.Cleanup(srv.Close)

	p := newTestProvider(srv)

	for i := 0; i < 7; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		time.AfterFunc(10*time.Millisecond, cancel)
		_, err := p.Current(ctx, weather.Query{Lat: 1, Units: "metric"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled), "call %d: %v", i, err)
		cancel()
	}

	w, err := p.Current(context.Background(), weather.Query{Units: "metric"})
	require.NoError(t, err)
	assert.Equal(t, "Beijing", w.Location.Name)
}
