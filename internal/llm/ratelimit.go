package llm

import (
	"context"
	"sync"
	"time"
)

// bucket is a token bucket refilled lazily on every wait. A nil bucket
// never blocks.
type bucket struct {
	mu     sync.Mutex
	rate   float64 // tokens per second
	cap    float64
	tokens float64
	last   time.Time
	now    func() time.Time
}

func newBucket(rps float64, burst int) *bucket {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &bucket{rate: rps, cap: float64(burst), tokens: float64(burst), now: time.Now}
}

// reserve takes one token, returning how long the caller must wait before
// it may proceed. The token is owed even if the caller gives up.
func (b *bucket) reserve() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if !b.last.IsZero() {
		b.tokens = min(b.cap, b.tokens+now.Sub(b.last).Seconds()*b.rate)
	}
	b.last = now
	b.tokens--
	if b.tokens >= 0 {
		return 0
	}
	return time.Duration(-b.tokens / b.rate * float64(time.Second))
}

// wait blocks until a token is available or ctx is done.
func (b *bucket) wait(ctx context.Context) error {
	if b == nil {
		return ctx.Err()
	}
	d := b.reserve()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
