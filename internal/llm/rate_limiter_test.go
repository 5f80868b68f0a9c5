package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterBurstThenRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }
	rl.lastRefillTime = now

	_, ok := rl.tryAcquire()
	assert.True(t, ok)
	_, ok = rl.tryAcquire()
	assert.True(t, ok)

	wait, ok := rl.tryAcquire()
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	now = now.Add(1500 * time.Millisecond)
	_, ok = rl.tryAcquire()
	assert.True(t, ok, "one token refilled")

	wait, ok = rl.tryAcquire()
	assert.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait, "partial refill progress is kept")
}

func TestRateLimiterWaitHonoursContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiterWaitsForToken(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, rl.Wait(ctx))
}

func TestNilRateLimiter(t *testing.T) {
	var rl *RateLimiter
	assert.NoError(t, rl.Wait(context.Background()))
}

func TestPerMinute(t *testing.T) {
	rl := PerMinute(60)
	assert.Equal(t, 60, rl.maxTokens)
	assert.Equal(t, time.Second, rl.refillRate)
}
