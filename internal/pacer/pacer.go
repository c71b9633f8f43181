package pacer

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum interval between the starts of consecutive
// requests issued by a single client instance. Each rate-limited endpoint
// class (document API, image hosts) owns its own Pacer; instances never
// share state.
type Pacer struct {
	limiter *rate.Limiter
}

// New creates a Pacer with the given minimum start-to-start interval.
// A non-positive interval disables pacing.
func New(minInterval time.Duration) *Pacer {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Pacer{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until at least the configured interval has elapsed since the
// start of the previous attempt, or until ctx is cancelled. It must be
// called before every attempt, including the first and including retries.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Backoff returns base * 2^attempt.
func Backoff(base time.Duration, attempt int) time.Duration {
	return base << uint(attempt)
}

// Sleep blocks for d, returning early if ctx is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryAfter parses an integer-seconds Retry-After header value, falling
// back to the provided duration for empty or HTTP-date values.
func RetryAfter(header string, fallback time.Duration) time.Duration {
	if header == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
