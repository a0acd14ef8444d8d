// File: internal/runtime/retry.go
package runtime

import (
	"context"
	"math/rand"
	"time"
)

// retry executes fn up to maxAttempts times with jittered exponential
// backoff. The base delay doubles on each attempt and 0-50% of the current
// delay is added as random jitter. fn returning retryable=false stops the
// loop immediately (client errors are not transient).
func retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() (retryable bool, err error)) error {
	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryable, err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable || attempt == maxAttempts {
			break
		}
		if ctx.Err() != nil {
			return lastErr
		}
		jitter := time.Duration(rand.Int63n(int64(delay/2) + 1))
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay + jitter):
		}
		delay *= 2
	}
	return lastErr
}
