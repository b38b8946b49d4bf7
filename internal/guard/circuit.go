package guard

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CircuitState is the state of one circuit.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker trips per upstream key after consecutive failures and lets a
// single probe through once resetTimeout has passed.
type CircuitBreaker struct {
	mu            sync.Mutex
	circuits      map[string]*circuit
	failThreshold int
	resetTimeout  time.Duration
	now           func() time.Time
}

type circuit struct {
	state       CircuitState
	failures    int
	probing     bool
	lastFailure time.Time
}

// NewCircuitBreaker opens a circuit after failThreshold consecutive failures.
func NewCircuitBreaker(failThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failThreshold < 1 {
		failThreshold = 1
	}
	return &CircuitBreaker{
		circuits:      make(map[string]*circuit),
		failThreshold: failThreshold,
		resetTimeout:  resetTimeout,
		now:           time.Now,
	}
}

func (cb *CircuitBreaker) get(key string) *circuit {
	c, ok := cb.circuits[key]
	if !ok {
		c = &circuit{state: CircuitClosed}
		cb.circuits[key] = c
	}
	return c
}

// Check reports whether a call to key may proceed.
func (cb *CircuitBreaker) Check(_ context.Context, key string) Result {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(key)
	switch c.state {
	case CircuitOpen:
		wait := cb.resetTimeout - cb.now().Sub(c.lastFailure)
		if wait > 0 {
			return Result{
				Allowed: false,
				Reason:  fmt.Sprintf("circuit open for %s, retry in %s", key, wait.Round(time.Second)),
				Guard:   "circuit_breaker",
			}
		}
		c.state = CircuitHalfOpen
		c.probing = true
		return Result{Allowed: true}
	case CircuitHalfOpen:
		if c.probing {
			return Result{Allowed: false, Reason: "circuit half-open, probe in flight", Guard: "circuit_breaker"}
		}
		c.probing = true
		return Result{Allowed: true}
	default:
		return Result{Allowed: true}
	}
}

// RecordSuccess closes the circuit for key.
func (cb *CircuitBreaker) RecordSuccess(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(key)
	c.state = CircuitClosed
	c.failures = 0
	c.probing = false
}

// RecordFailure counts a failure; a failed probe reopens the circuit immediately.
func (cb *CircuitBreaker) RecordFailure(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(key)
	c.failures++
	c.lastFailure = cb.now()
	c.probing = false
	if c.state == CircuitHalfOpen || c.failures >= cb.failThreshold {
		c.state = CircuitOpen
	}
}

// State returns the current state of key.
func (cb *CircuitBreaker) State(key string) CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.get(key).state
}
