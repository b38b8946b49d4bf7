package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result is the outcome of a guard check.
type Result struct {
	Allowed bool
	Reason  string
	Guard   string
}

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token bucket limiter. Idle keys are pruned lazily.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*keyLimiter
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	lastPrune time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the given burst per key.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*keyLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

// Check consumes one token for key.
func (rl *RateLimiter) Check(_ context.Context, key string) Result {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.prune(now)

	kl, ok := rl.limiters[key]
	if !ok {
		kl = &keyLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[key] = kl
	}
	kl.lastSeen = now

	if !kl.limiter.AllowN(now, 1) {
		return Result{
			Allowed: false,
			Reason:  fmt.Sprintf("rate limit exceeded: %.0f/s burst %d", float64(rl.rps), rl.burst),
			Guard:   "rate_limiter",
		}
	}
	return Result{Allowed: true}
}

// prune drops limiters idle for longer than idleTTL, at most once a minute. Caller holds mu.
func (rl *RateLimiter) prune(now time.Time) {
	if now.Sub(rl.lastPrune) < time.Minute {
		return
	}
	rl.lastPrune = now
	cutoff := now.Add(-rl.idleTTL)
	for k, kl := range rl.limiters {
		if kl.lastSeen.Before(cutoff) {
			delete(rl.limiters, k)
		}
	}
}
