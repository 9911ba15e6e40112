package pipeline

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/affigen/internal/doctree"
	"github.com/dgallion1/affigen/internal/generate"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *generate.RetryableError
	return errors.As(err, &retryErr) || errors.Is(err, generate.ErrUnavailable)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

// FailureCode classifies a generation error for clients.
func FailureCode(err error) string {
	var parseErr *generate.ParseError
	var shapeErr *doctree.ShapeError
	var retryErr *generate.RetryableError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, generate.ErrUnavailable):
		return CodeUnavailable
	case errors.As(err, &parseErr), errors.As(err, &shapeErr), errors.Is(err, generate.ErrEmptyBody):
		return CodeInvalidOutput
	case errors.As(err, &retryErr) && retryErr.StatusCode == 503:
		return CodeUnavailable
	default:
		return CodeFailed
	}
}
