package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"remsync/internal/pacer"
)

const (
	// One second between image requests to be respectful to third-party
	// hosts; image fetching is paced independently of the document API.
	defaultMinInterval = time.Second
	defaultMaxAttempts = 3
	defaultRetryDelay  = 2 * time.Second
	defaultTimeout     = 15 * time.Second

	userAgent = "Mozilla/5.0 (compatible; remsync/1.0)"
)

// Fetcher downloads images referenced by article bodies. Every failure
// mode is degradable: a fetch that cannot succeed yields no bytes and no
// error, and the caller proceeds without the image.
type Fetcher struct {
	httpClient  *http.Client
	pace        *pacer.Pacer
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMinInterval overrides the pacing interval between request starts.
func WithMinInterval(d time.Duration) Option {
	return func(f *Fetcher) {
		f.pace = pacer.New(d)
	}
}

// WithRetryDelay overrides the base delay for exponential backoff.
func WithRetryDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.retryDelay = d
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates an image fetcher with its own pacing state.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		pace:        pacer.New(defaultMinInterval),
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the image at url. It returns (nil, nil) when the image
// is unavailable: forbidden responses, exhausted retries, and any other
// terminal failure. The only error returned is context cancellation, so a
// single bad image never aborts a document.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	failures := 0
	rateLimitHits := 0

	for {
		if err := f.pace.Wait(ctx); err != nil {
			return nil, err
		}

		data, status, retryAfter, err := f.attempt(ctx, url)
		if err == nil && status == http.StatusOK {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		switch {
		case err == nil && status == http.StatusTooManyRequests:
			rateLimitHits++
			if rateLimitHits >= f.maxAttempts {
				f.logger.Warn("image host kept rate limiting, giving up", "url", url)
				return nil, nil
			}
			wait := pacer.RetryAfter(retryAfter, pacer.Backoff(f.retryDelay, rateLimitHits-1))
			f.logger.Warn("image server rate limited", "url", url, "wait", wait)
			if sleepErr := pacer.Sleep(ctx, wait); sleepErr != nil {
				return nil, sleepErr
			}
		case err == nil && status == http.StatusForbidden:
			// Usually hotlink protection; not worth retrying.
			f.logger.Warn("access forbidden for image", "url", url)
			return nil, nil
		default:
			failures++
			if failures >= f.maxAttempts {
				f.logger.Warn("failed to fetch image, giving up",
					"url", url, "attempts", failures, "error", err)
				return nil, nil
			}
			delay := pacer.Backoff(f.retryDelay, failures-1)
			f.logger.Warn("image fetch failed, retrying",
				"url", url, "attempt", failures, "delay", delay, "error", err)
			if sleepErr := pacer.Sleep(ctx, delay); sleepErr != nil {
				return nil, sleepErr
			}
		}
	}
}

// attempt issues one GET. It returns the body bytes for 200 responses and
// the status code otherwise; non-2xx statuses other than 429 and 403 are
// reported as errors so the retry loop treats them as transport failures.
func (f *Fetcher) attempt(ctx context.Context, url string) (data []byte, status int, retryAfter string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, 0, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resp.StatusCode, "", fmt.Errorf("read body: %w", err)
		}
		return data, http.StatusOK, "", nil
	case http.StatusTooManyRequests:
		return nil, resp.StatusCode, resp.Header.Get("Retry-After"), nil
	case http.StatusForbidden:
		return nil, resp.StatusCode, "", nil
	default:
		return nil, resp.StatusCode, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
