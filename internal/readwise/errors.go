package readwise

import (
	"errors"
	"fmt"
)

// ErrInvalidToken marks a 401: the token is wrong or expired, and no
// amount of retrying will help.
var ErrInvalidToken = errors.New("invalid or expired Readwise token")

// ErrRateLimited marks a 429 from the Reader API. Callers match it with
// errors.Is; the concrete error underneath carries the Retry-After value.
var ErrRateLimited = errors.New("readwise API rate limit exceeded")

// ServerError is a retryable 5xx response from the Reader API.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Readwise server error: HTTP %d", e.StatusCode)
}

// rateLimitError carries the server-supplied Retry-After value alongside
// the ErrRateLimited sentinel.
type rateLimitError struct {
	retryAfter string
}

func (e *rateLimitError) Error() string { return ErrRateLimited.Error() }

func (e *rateLimitError) Unwrap() error { return ErrRateLimited }
