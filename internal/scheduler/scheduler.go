package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-mcp/internal/weather"
)

// Warmer fetches current weather for a city, populating the service caches.
type Warmer interface {
	CurrentByCity(ctx context.Context, city, units, lang string) (weather.CurrentWeather, error)
}

// Scheduler periodically fetches the current weather of configured cities so
// their geocoding and weather entries stay cached.
type Scheduler struct {
	scheduler *gocron.Scheduler
	warmer    Warmer
	cities    []string
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.SugaredLogger
}

// New creates a new Scheduler.
func New(cities []string, interval time.Duration, warmer Warmer, logger *zap.SugaredLogger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		warmer:    warmer,
		cities:    cities,
		interval:  interval,
		timeout:   30 * time.Second,
		logger:    logger,
	}
}

// Start schedules the warm-up job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		s.logger.Infow("scheduler: no cities configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Infow("scheduler: started", "cities", s.cities, "interval", interval)
	return nil
}

// RunOnce warms every city concurrently with the service defaults and
// returns how many failed. Failures are logged, never fatal.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	s.logger.Debugw("scheduler: running warm-up job")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, city := range s.cities {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			if _, err := s.warmer.CurrentByCity(ctx, city, "", ""); err != nil {
				s.logger.Warnw("scheduler: warm-up failed", "city", city, "kind", weather.KindOf(err).String(), "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.logger.Debugw("scheduler: completed warm-up job", "cities", len(s.cities), "failed", failed)
	return failed
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
