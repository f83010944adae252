package scheduler

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-mcp/internal/weather"
)

type recordingWarmer struct {
	mu    sync.Mutex
	seen  []string
	calls chan string
}

func (w *recordingWarmer) CurrentByCity(_ context.Context, city, units, lang string) (weather.CurrentWeather, error) {
	w.mu.Lock()
	w.seen = append(w.seen, city+"|"+units+"|"+lang)
	w.mu.Unlock()
	if w.calls != nil {
		w.calls <- city
	}
	if city == "Atlantis" {
		return weather.CurrentWeather{}, weather.NotFoundError(0, "city not found: %s", city)
	}
	return weather.CurrentWeather{}, nil
}

func TestRunOnce_WarmsEveryCityWithDefaults(t *testing.T) {
	w := &recordingWarmer{}
	s := New([]string{"Beijing", "Atlantis", "Shanghai"}, time.Minute, w, nil)

	failed := s.RunOnce(context.Background())

	assert.Equal(t, 1, failed)
	sort.Strings(w.seen)
	assert.Equal(t, []string{"Atlantis||", "Beijing||", "Shanghai||"}, w.seen)
}

func TestStart_RunsImmediately(t *testing.T) {
	w := &recordingWarmer{calls: make(chan string, 4)}
	s := New([]string{"Beijing"}, time.Hour, w, nil)

	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	select {
	case city := <-w.calls:
		assert.Equal(t, "Beijing", city)
	case <-time.After(2 * time.Second):
		t.Fatal("warm-up job did not run on start")
	}
}

func TestStart_NoCities(t *testing.T) {
	s := New(nil, time.Minute, &recordingWarmer{}, nil)
	assert.NoError(t, s.Start())
	s.Stop()
}
