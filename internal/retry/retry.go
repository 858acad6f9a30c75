package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Do runs fn up to attempts times, doubling the wait after each failure.
// It gives up early when ctx is done.
func Do[T any](ctx context.Context, attempts int, wait time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}

		logrus.WithError(err).WithField("attempt", i+1).Warnf("retrying in %v", wait)
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("after %d attempts: %w", i+1, ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
