package weather

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-mcp/internal/store"
)

const (
	// DefaultCacheTTL bounds how stale a cached weather or forecast can be.
	DefaultCacheTTL = 10 * time.Minute

	// MinCompareCities and MaxCompareCities bound a comparison batch.
	MinCompareCities = 2
	MaxCompareCities = 5

	searchLimit = 5
)

// Option configures a Service.
type Option func(*Service)

// WithCacheTTL overrides the weather and forecast cache lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock replaces time.Now for the caches and generatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaults sets the units and language used when a caller leaves them empty.
func WithDefaults(units, lang string) Option {
	return func(s *Service) {
		if units != "" {
			s.defaultUnits = units
		}
		if lang != "" {
			s.defaultLang = lang
		}
	}
}

// CacheStats reports how many entries each query cache holds.
type CacheStats struct {
	Geo      int `json:"geo"`
	Current  int `json:"current"`
	Forecast int `json:"forecast"`
}

// Service resolves cities, fetches weather through the provider and keeps
// the normalized results in its query caches.
type Service struct {
	provider Provider
	logger   *zap.SugaredLogger

	ttl          time.Duration
	now          func() time.Time
	defaultUnits string
	defaultLang  string

	geo      Cache[GeoLocation]
	current  Cache[CurrentWeather]
	forecast Cache[ForecastResponse]
}

// NewService creates a new Service backed by provider.
func NewService(provider Provider, opts ...Option) *Service {
	s := &Service{
		provider:     provider,
		logger:       zap.NewNop().Sugar(),
		ttl:          DefaultCacheTTL,
		now:          time.Now,
		defaultUnits: UnitsMetric,
		defaultLang:  "zh_cn",
	}
	for _, opt := range opts {
		opt(s)
	}

	// City to coordinate mappings are effectively static, so they never expire.
	s.geo = store.NewMemoryCache[GeoLocation](0, store.WithClock(s.now))
	s.current = store.NewMemoryCache[CurrentWeather](s.ttl, store.WithClock(s.now))
	s.forecast = store.NewMemoryCache[ForecastResponse](s.ttl, store.WithClock(s.now))
	return s
}

// DefaultUnits returns the unit system used for empty requests.
func (s *Service) DefaultUnits() string { return s.defaultUnits }

// DefaultLang returns the language tag used for empty requests.
func (s *Service) DefaultLang() string { return s.defaultLang }

// CacheStats returns the current size of every query cache.
func (s *Service) CacheStats() CacheStats {
	return CacheStats{
		Geo:      s.geo.Len(),
		Current:  s.current.Len(),
		Forecast: s.forecast.Len(),
	}
}

// Resolve geocodes city using the first upstream match. Results are cached
// for the life of the process under the name exactly as given.
func (s *Service) Resolve(ctx context.Context, city string) (GeoLocation, error) {
	if strings.TrimSpace(city) == "" {
		return GeoLocation{}, ValidationError("city must not be empty")
	}

	key := "geo_" + city
	if loc, ok := s.geo.Get(key); ok {
		return loc.clone(), nil
	}

	matches, err := s.provider.Geocode(ctx, city, 1)
	if err != nil {
		return GeoLocation{}, namedNotFound(err, city)
	}
	if len(matches) == 0 {
		return GeoLocation{}, NotFoundError(0, "city not found: %s", city)
	}

	loc := s.localize(matches[0])
	s.geo.Put(key, loc.clone())
	s.logger.Debugw("geocoded city", "city", city, "lat", loc.Lat, "lon", loc.Lon)
	return loc, nil
}

// SearchCities returns every upstream match for query, localized. Searches are not cached.
func (s *Service) SearchCities(ctx context.Context, query string) ([]GeoLocation, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ValidationError("query must not be empty")
	}

	matches, err := s.provider.Geocode(ctx, query, searchLimit)
	if err != nil {
		return nil, namedNotFound(err, query)
	}
	if len(matches) == 0 {
		return nil, NotFoundError(0, "city not found: %s", query)
	}

	out := make([]GeoLocation, 0, len(matches))
	for _, m := range matches {
		out = append(out, s.localize(m))
	}
	return out, nil
}

// CurrentByCoordinates returns the current weather at (lat, lon).
func (s *Service) CurrentByCoordinates(ctx context.Context, lat, lon float64, units, lang string) (CurrentWeather, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return CurrentWeather{}, err
	}
	q, err := s.query(lat, lon, units, lang)
	if err != nil {
		return CurrentWeather{}, err
	}
	return s.fetchCurrent(ctx, q)
}

// CurrentByCity geocodes city and returns its current weather.
func (s *Service) CurrentByCity(ctx context.Context, city, units, lang string) (CurrentWeather, error) {
	q, err := s.query(0, 0, units, lang)
	if err != nil {
		return CurrentWeather{}, err
	}
	loc, err := s.Resolve(ctx, city)
	if err != nil {
		return CurrentWeather{}, err
	}
	q.Lat, q.Lon = loc.Lat, loc.Lon

	w, err := s.fetchCurrent(ctx, q)
	if err != nil {
		return CurrentWeather{}, namedNotFound(err, city)
	}
	return w, nil
}

// ForecastByCoordinates returns up to days forecast days at (lat, lon).
func (s *Service) ForecastByCoordinates(ctx context.Context, lat, lon float64, days int, units, lang string) (ForecastResponse, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return ForecastResponse{}, err
	}
	q, err := s.query(lat, lon, units, lang)
	if err != nil {
		return ForecastResponse{}, err
	}
	return s.fetchForecast(ctx, q, days)
}

// ForecastByCity geocodes city and returns up to days forecast days.
func (s *Service) ForecastByCity(ctx context.Context, city string, days int, units, lang string) (ForecastResponse, error) {
	q, err := s.query(0, 0, units, lang)
	if err != nil {
		return ForecastResponse{}, err
	}
	loc, err := s.Resolve(ctx, city)
	if err != nil {
		return ForecastResponse{}, err
	}
	q.Lat, q.Lon = loc.Lat, loc.Lon

	f, err := s.fetchForecast(ctx, q, days)
	if err != nil {
		return ForecastResponse{}, namedNotFound(err, city)
	}
	return f, nil
}

// Compare fetches the current weather of every city concurrently. The first
// failure cancels the remaining lookups and fails the whole comparison.
func (s *Service) Compare(ctx context.Context, cities []string, units, lang string) ([]CurrentWeather, error) {
	if len(cities) < MinCompareCities || len(cities) > MaxCompareCities {
		return nil, ValidationError("compare needs between %d and %d cities, got %d",
			MinCompareCities, MaxCompareCities, len(cities))
	}

	results := make([]CurrentWeather, len(cities))
	g, gctx := errgroup.WithContext(ctx)
	for i, city := range cities {
		i, city := i, city
		g.Go(func() error {
			w, err := s.CurrentByCity(gctx, city, units, lang)
			if err != nil {
				return err
			}
			results[i] = w
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Warnw("comparison failed", "cities", cities, "error", err)
		return nil, err
	}
	return results, nil
}

func (s *Service) fetchCurrent(ctx context.Context, q Query) (CurrentWeather, error) {
	key := fmt.Sprintf("current_%s_%s_%s_%s", formatCoord(q.Lat), formatCoord(q.Lon), q.Units, q.Lang)
	if w, ok := s.current.Get(key); ok {
		s.logger.Debugw("cache hit", "key", key)
		return w, nil
	}

	w, err := s.provider.Current(ctx, q)
	if err != nil {
		s.logger.Errorw("current weather fetch failed", "provider", s.provider.Name(),
			"lat", q.Lat, "lon", q.Lon, "kind", KindOf(err).String(), "error", err)
		return CurrentWeather{}, err
	}
	w.Units = q.Units

	s.current.Put(key, w)
	return w, nil
}

func (s *Service) fetchForecast(ctx context.Context, q Query, days int) (ForecastResponse, error) {
	days = ClampDays(days)

	key := fmt.Sprintf("forecast_%s_%s_%d_%s_%s", formatCoord(q.Lat), formatCoord(q.Lon), days, q.Units, q.Lang)
	if f, ok := s.forecast.Get(key); ok {
		s.logger.Debugw("cache hit", "key", key)
		return f.clone(), nil
	}

	series, err := s.provider.Forecast(ctx, q, SampleCount(days))
	if err != nil {
		s.logger.Errorw("forecast fetch failed", "provider", s.provider.Name(),
			"lat", q.Lat, "lon", q.Lon, "kind", KindOf(err).String(), "error", err)
		return ForecastResponse{}, err
	}

	f := AggregateForecast(series, days, q.Units, s.now())
	s.forecast.Put(key, f.clone())
	return f, nil
}

func (s *Service) query(lat, lon float64, units, lang string) (Query, error) {
	u, err := NormalizeUnits(units, s.defaultUnits)
	if err != nil {
		return Query{}, err
	}
	if lang == "" {
		lang = s.defaultLang
	}
	return Query{Lat: lat, Lon: lon, Units: u, Lang: lang}, nil
}

// localize prefers the provider's name in the default language.
func (s *Service) localize(loc GeoLocation) GeoLocation {
	code := strings.ToLower(s.defaultLang)
	if i := strings.IndexAny(code, "_-"); i > 0 {
		code = code[:i]
	}
	if name := loc.LocalNames[code]; name != "" {
		loc.Name = name
	}
	return loc
}

// namedNotFound rewrites a not-found error so its message names city.
func namedNotFound(err error, city string) error {
	if KindOf(err) != KindNotFound {
		return err
	}
	return NotFoundError(StatusOf(err), "no weather data found for city %q", city)
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
