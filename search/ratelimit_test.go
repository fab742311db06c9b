package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_EnforcesDelay(t *testing.T) {
	limiter := newRateLimiter(50 * time.Millisecond)
	ctx := context.Background()

	assert.NoError(t, limiter.wait(ctx))

	start := time.Now()
	assert.NoError(t, limiter.wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRateLimiter_ZeroDelayDoesNotBlock(t *testing.T) {
	limiter := newRateLimiter(0)

	start := time.Now()
	for i := 0; i < 5; i++ {
		assert.NoError(t, limiter.wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiter_ContextCancellation(t *testing.T) {
	limiter := newRateLimiter(time.Minute)

	assert.NoError(t, limiter.wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, limiter.wait(ctx), context.Canceled)
}
