package notification

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
)

type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
}

// retry runs operation until it succeeds, returns a non-retryable error or
// runs out of attempts.
func retry(ctx context.Context, p retryPolicy, operation func(ctx context.Context) error) (int, error) {
	var lastErr error

	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		default:
		}

		err := operation(ctx)
		if err == nil {
			return attempt + 1, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return attempt + 1, err
		}

		if attempt < p.maxAttempts-1 {
			timer := time.NewTimer(p.backoff(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return attempt + 1, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return p.maxAttempts, fmt.Errorf("maximum attempts exceeded: %w", lastErr)
}

// Errors that say nothing about retryability are retried.
func isRetryable(err error) bool {
	var r domain.Retryable
	if errors.As(err, &r) {
		return r.IsRetryable()
	}
	return !errors.Is(err, context.Canceled)
}

// Backoff calculation with exponential delay and jitter
func (p retryPolicy) backoff(attempt int) time.Duration {
	base := p.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Int63n(int64(p.baseDelay)/2 + 1))

	return base + jitter
}
