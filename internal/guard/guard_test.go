package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsUpToBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := rl.Check(ctx, "test-key")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimiter_BlocksOverBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	fixed := time.Now()
	rl.now = func() time.Time { return fixed }
	ctx := context.Background()

	rl.Check(ctx, "test-key")
	rl.Check(ctx, "test-key")
	result := rl.Check(ctx, "test-key")

	assert.False(t, result.Allowed)
	assert.Equal(t, "rate_limiter", result.Guard)
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	assert.True(t, rl.Check(ctx, "k").Allowed)
	assert.False(t, rl.Check(ctx, "k").Allowed)

	now = now.Add(time.Second)
	assert.True(t, rl.Check(ctx, "k").Allowed)
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	ctx := context.Background()

	r1 := rl.Check(ctx, "key-a")
	r2 := rl.Check(ctx, "key-b")

	assert.True(t, r1.Allowed)
	assert.True(t, r2.Allowed)
}

func TestRateLimiter_PrunesIdleKeys(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	rl.Check(ctx, "old")
	now = now.Add(11 * time.Minute)
	rl.Check(ctx, "new")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.limiters, "old")
	assert.Contains(t, rl.limiters, "new")
}

func TestCircuitBreaker_ClosedByDefault(t *testing.T) {
	cb := NewCircuitBreaker(3, 5*time.Second)
	assert.True(t, cb.Check(context.Background(), "discord").Allowed)
	assert.Equal(t, CircuitClosed, cb.State("discord"))
}

func TestCircuitBreaker_OpensOnThreshold(t *testing.T) {
	cb := NewCircuitBreaker(2, 5*time.Second)
	ctx := context.Background()

	cb.RecordFailure("discord")
	assert.True(t, cb.Check(ctx, "discord").Allowed)
	cb.RecordFailure("discord")

	res := cb.Check(ctx, "discord")
	assert.False(t, res.Allowed)
	assert.Equal(t, "circuit_breaker", res.Guard)
	assert.True(t, cb.Check(ctx, "fivem").Allowed, "circuits are per key")
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(2, 5*time.Second)

	cb.RecordFailure("discord")
	cb.RecordSuccess("discord")
	cb.RecordFailure("discord")
	assert.Equal(t, CircuitClosed, cb.State("discord"))
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker(1, 5*time.Second)
	now := time.Now()
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	cb.RecordFailure("discord")
	assert.False(t, cb.Check(ctx, "discord").Allowed)

	now = now.Add(6 * time.Second)
	assert.True(t, cb.Check(ctx, "discord").Allowed, "first probe after reset timeout")
	assert.False(t, cb.Check(ctx, "discord").Allowed, "only one probe at a time")

	cb.RecordFailure("discord")
	assert.Equal(t, CircuitOpen, cb.State("discord"))

	now = now.Add(6 * time.Second)
	assert.True(t, cb.Check(ctx, "discord").Allowed)
	cb.RecordSuccess("discord")
	assert.Equal(t, CircuitClosed, cb.State("discord"))
	assert.True(t, cb.Check(ctx, "discord").Allowed)
}
