package search

import (
	"context"
	"sync"
	"time"
)

// rateLimiter enforces a minimum delay between consecutive requests so the
// providers stay polite toward the backing APIs.
type rateLimiter struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time
}

func newRateLimiter(delay time.Duration) *rateLimiter {
	return &rateLimiter{delay: delay}
}

// wait blocks until the delay since the previous request has elapsed, or
// the context is done.
func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := r.delay - time.Since(r.last); remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	r.last = time.Now()

	return nil
}
