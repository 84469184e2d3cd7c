package llm

import (
	"context"
	"time"
)

// Retry retries a request up to maxAttempts with exponential backoff
// starting at baseDelay. It stops immediately if the context is canceled
// or the error is permanent.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return intercept(func(ctx context.Context, _ Call, invoke func(context.Context) error) error {
		var last error
		for i := 0; i < maxAttempts; i++ {
			err := invoke(ctx)
			if err == nil {
				return nil
			}
			if IsPermanent(err) {
				return err
			}
			last = err
			if i == maxAttempts-1 {
				break
			}
			t := time.NewTimer(baseDelay * time.Duration(1<<i))
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		return last
	})
}
