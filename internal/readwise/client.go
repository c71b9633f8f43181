package readwise

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"remsync/internal/pacer"
)

const (
	defaultBaseURL = "https://readwise.io/api/v3"

	defaultTimeout = 30 * time.Second

	// The Reader API allows 20 requests per minute per token.
	defaultMinInterval = 3100 * time.Millisecond
	defaultMaxAttempts = 5
	defaultRetryDelay  = 2 * time.Second
)

// Client interfaces with the Readwise Reader list API. All requests go
// through a shared pacing and retry discipline; a single Client must not
// be used from multiple goroutines.
type Client struct {
	token       string
	baseURL     string
	httpClient  *http.Client
	pace        *pacer.Pacer
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithMinInterval overrides the pacing interval between request starts.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pace = pacer.New(d)
	}
}

// WithRetryDelay overrides the base delay for exponential backoff.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Reader API client.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:       token,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		pace:        pacer.New(defaultMinInterval),
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listResponse struct {
	Results        []Document `json:"results"`
	NextPageCursor string     `json:"nextPageCursor"`
}

// ListDocuments fetches all documents from the given locations that carry
// the given tag. Locations are visited in order; within a location, page
// order is preserved. Documents present in more than one location are
// returned once per match.
func (c *Client) ListDocuments(ctx context.Context, locations []string, tag string) ([]Document, error) {
	var matched []Document

	for _, location := range locations {
		c.logger.Info("fetching documents", "location", location)

		cursor := ""
		for {
			page, err := c.listPage(ctx, url.Values{
				"location":        {location},
				"withHtmlContent": {"true"},
			}, cursor)
			if err != nil {
				return nil, fmt.Errorf("list location %q: %w", location, err)
			}

			for _, doc := range page.Results {
				if doc.Tags.Has(tag) {
					matched = append(matched, doc)
				}
			}

			if page.NextPageCursor == "" {
				break
			}
			cursor = page.NextPageCursor
		}
	}

	return matched, nil
}

// DocumentContent fetches the HTML body of a single document. A document
// that no longer exists yields an empty string, not an error.
func (c *Client) DocumentContent(ctx context.Context, id string) (string, error) {
	page, err := c.listPage(ctx, url.Values{
		"id":              {id},
		"withHtmlContent": {"true"},
	}, "")
	if err != nil {
		return "", fmt.Errorf("fetch document %s: %w", id, err)
	}
	if len(page.Results) == 0 {
		return "", nil
	}
	return page.Results[0].HTMLContent, nil
}

func (c *Client) listPage(ctx context.Context, params url.Values, cursor string) (*listResponse, error) {
	if cursor != "" {
		params.Set("pageCursor", cursor)
	}

	body, err := c.get(ctx, c.baseURL+"/list/?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var page listResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return &page, nil
}

// get performs a paced GET with exponential-backoff retries. Rate-limit
// responses honor the server's Retry-After and do not consume the retry
// budget; transport errors and 5xx responses do.
func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	var lastErr error
	failures := 0
	rateLimitHits := 0

	for {
		if err := c.pace.Wait(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := c.attempt(ctx, requestURL)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}

		if errors.Is(err, ErrRateLimited) {
			rateLimitHits++
			if rateLimitHits >= c.maxAttempts {
				return nil, fmt.Errorf("max retries exceeded: %w", err)
			}
			wait := pacer.RetryAfter(rateLimitHeader(err), pacer.Backoff(c.retryDelay, rateLimitHits-1))
			c.logger.Warn("readwise API rate limited", "wait", wait)
			if sleepErr := pacer.Sleep(ctx, wait); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		lastErr = err
		failures++
		if failures >= c.maxAttempts {
			return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
		}

		delay := pacer.Backoff(c.retryDelay, failures-1)
		c.logger.Warn("readwise API request failed, retrying",
			"attempt", failures, "delay", delay, "error", err)
		if sleepErr := pacer.Sleep(ctx, delay); sleepErr != nil {
			return nil, sleepErr
		}
	}
}

// attempt issues one request. The second return value reports whether a
// failure may be retried.
func (c *Client) attempt(ctx context.Context, requestURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, fmt.Errorf("read response: %w", err)
		}
		return body, false, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, false, ErrInvalidToken
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, &rateLimitError{retryAfter: resp.Header.Get("Retry-After")}
	case resp.StatusCode >= 500:
		return nil, true, &ServerError{StatusCode: resp.StatusCode}
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, true, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}

// rateLimitHeader extracts the Retry-After value carried by a rate-limit
// error, if any.
func rateLimitHeader(err error) string {
	var rle *rateLimitError
	if errors.As(err, &rle) {
		return rle.retryAfter
	}
	return ""
}
