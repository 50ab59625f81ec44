package download

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:    maxRetries,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 2,
	}
}

// TestRetry_EventualSuccess verifies an operation failing twice then
// succeeding is invoked exactly three times and its result returned.
func TestRetry_EventualSuccess(t *testing.T) {
	t.Parallel()

	var calls int

	got, err := Retry(context.Background(), fastRetryConfig(3), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}

		return "done", nil
	})

	require.NoError(t, err)
	require.Equal(t, "done", got)
	require.Equal(t, 3, calls)
}

// TestRetry_ExhaustedReturnsLastError verifies the last error is
// returned unchanged after the budget runs out.
func TestRetry_ExhaustedReturnsLastError(t *testing.T) {
	t.Parallel()

	var calls int

	lastErr := errors.New("attempt 3 failed")
	errs := []error{errors.New("attempt 1 failed"), errors.New("attempt 2 failed"), lastErr}

	_, err := Retry(context.Background(), fastRetryConfig(2), func(context.Context) (int, error) {
		calls++
		return 0, errs[calls-1]
	})

	require.Equal(t, 3, calls)
	require.Same(t, lastErr, err)
}

// TestRetry_NoRetriesRunsOnce verifies MaxRetries=0 means a single attempt.
func TestRetry_NoRetriesRunsOnce(t *testing.T) {
	t.Parallel()

	var calls int

	_, err := Retry(context.Background(), fastRetryConfig(0), func(context.Context) (int, error) {
		calls++
		return 0, errors.New("nope")
	})

	require.Error(t, err)
	require.Equal(t, 1, calls)
}

// TestRetry_ContextCancelled verifies cancellation interrupts the backoff sleep.
func TestRetry_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	cfg := RetryConfig{MaxRetries: 5, InitialDelay: time.Hour, BackoffFactor: 2}

	var calls int

	done := make(chan error, 1)
	go func() {
		_, err := Retry(ctx, cfg, func(context.Context) (int, error) {
			calls++
			return 0, errors.New("transient")
		})
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}
