package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-mcp/internal/weather"
)

// BreakerConfig controls when the upstream circuit opens.
type BreakerConfig struct {
	Name string
	// ConsecutiveFailures trips the breaker. Only upstream faults count;
	// not-found, auth and rate-limit answers are successful round trips, and
	// a caller cancelling its own request is not counted at all.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

func newBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			return weather.KindOf(err) != weather.KindUpstream
		},
	})
}

// getJSON issues one GET through the circuit breaker and decodes a 2xx body
// into out. Every failure is returned as a *weather.Error. No retries.
func getJSON(
	ctx context.Context,
	client *resty.Client,
	cb *gobreaker.CircuitBreaker,
	url string,
	params map[string]string,
	out interface{},
) error {
	_, err := cb.Execute(func() (interface{}, error) {
		resp, err := client.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(url)
		if err != nil {
			return nil, transportError(ctx, err)
		}

		if err := statusError(resp.StatusCode(), resp.Body()); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return nil, weather.UpstreamError(resp.StatusCode(), "malformed upstream payload", err)
		}
		return nil, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return weather.UpstreamError(0, "upstream temporarily unavailable", err)
	}
	return err
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return weather.UpstreamError(0, "upstream request cancelled", ctx.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return weather.UpstreamError(0, "upstream request timed out", err)
	}
	return weather.UpstreamError(0, "upstream request failed", err)
}

// statusError maps an upstream HTTP status to the error taxonomy.
func statusError(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	msg := upstreamMessage(body)
	switch status {
	case http.StatusUnauthorized:
		return weather.AuthError(status, orDefault(msg, "invalid api key"))
	case http.StatusNotFound:
		return weather.NotFoundError(status, "%s", orDefault(msg, "no data for the requested location"))
	case http.StatusTooManyRequests:
		return weather.RateLimitError(status, orDefault(msg, "upstream rate limit exceeded"))
	default:
		return weather.UpstreamError(status,
			fmt.Sprintf("upstream returned %d: %s", status, orDefault(msg, http.StatusText(status))), nil)
	}
}

// upstreamMessage extracts the "message" field OpenWeatherMap puts in error bodies.
func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
