package download

import (
	"context"
	"time"

	"github.com/okonechnikov/chromesnap/internal/logger"
)

// RetryConfig bounds the retry loop.
type RetryConfig struct {
	// MaxRetries is how many times a failed operation is re-invoked;
	// the operation runs at most MaxRetries+1 times.
	MaxRetries int
	// InitialDelay is the sleep before the first retry.
	InitialDelay time.Duration
	// BackoffFactor multiplies the delay after every failed attempt.
	BackoffFactor float64
}

// Retry invokes op up to cfg.MaxRetries+1 times. After a failed attempt
// it sleeps InitialDelay * BackoffFactor^attempt (attempt is 0-indexed)
// before the next one. Once the budget is exhausted the last error is
// returned unchanged. Context cancellation interrupts the sleep and
// returns the context error.
func Retry[T any](ctx context.Context, cfg RetryConfig, op func(context.Context) (T, error)) (T, error) {
	var (
		result  T
		lastErr error
	)

	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = op(ctx)
		if lastErr == nil {
			return result, nil
		}

		if attempt == cfg.MaxRetries {
			break
		}

		logger.WarnKV(ctx, "Operation failed, retrying",
			"attempt", attempt+1, "delay", delay.String(), "error", lastErr)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
	}

	var zero T

	return zero, lastErr
}
