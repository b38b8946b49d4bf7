// Package cache is a two-tier TTL cache: an in-process map in front of a persistent Store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// envelope is what both tiers hold. ExpiresAt is absolute so the persistent
// copy keeps the deadline it was written with.
type envelope struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (e envelope) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Cache is safe for concurrent use.
type Cache struct {
	mu     sync.Mutex
	memory map[string]envelope
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// New builds a Cache over the given persistent tier. A nil store means memory only.
func New(store Store, logger *slog.Logger) *Cache {
	return &Cache{
		memory: make(map[string]envelope),
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Set stores value under key for ttl. A non-positive ttl writes an entry that is
// already expired and drops any persistent copy, so the next Get misses.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value %s: %w", key, err)
	}
	env := envelope{Value: raw, ExpiresAt: c.now().Add(ttl)}

	c.mu.Lock()
	c.memory[key] = env
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if ttl <= 0 {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn("cache persistent delete failed", "key", key, "error", err)
		}
		return nil
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal cache envelope %s: %w", key, err)
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn("cache persistent set failed", "key", key, "error", err)
	}
	return nil
}

// Get decodes the cached value into dest. It reports false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	now := c.now()

	c.mu.Lock()
	env, ok := c.memory[key]
	if ok && env.expired(now) {
		delete(c.memory, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		var found bool
		env, found = c.fromStore(ctx, key, now)
		if !found {
			return false, nil
		}
		c.mu.Lock()
		c.memory[key] = env
		c.mu.Unlock()
	}

	if err := json.Unmarshal(env.Value, dest); err != nil {
		return false, fmt.Errorf("unmarshal cache value %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) fromStore(ctx context.Context, key string, now time.Time) (envelope, bool) {
	if c.store == nil {
		return envelope{}, false
	}
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn("cache persistent get failed", "key", key, "error", err)
		}
		return envelope{}, false
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("cache entry corrupt", "key", key, "error", err)
		_ = c.store.Delete(ctx, key)
		return envelope{}, false
	}
	if env.expired(now) {
		_ = c.store.Delete(ctx, key)
		return envelope{}, false
	}
	return env, true
}

// Invalidate removes key from both tiers.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.memory, key)
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}

// InvalidatePrefix removes every key starting with prefix from both tiers.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	for k := range c.memory {
		if strings.HasPrefix(k, prefix) {
			delete(c.memory, k)
		}
	}
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.DeletePrefix(ctx, prefix); err != nil {
		return fmt.Errorf("invalidate prefix %s: %w", prefix, err)
	}
	return nil
}

// Clear empties both tiers.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.memory = make(map[string]envelope)
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.Clear(ctx)
}

// Close releases the persistent tier.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// Fetch returns the cached value for key, or calls load and caches its result for ttl.
// Cache failures never fail the read; load errors are returned uncached.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if c != nil {
		hit, err := c.Get(ctx, key, &cached)
		if err != nil {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		}
		if hit {
			return cached, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if c != nil {
		if err := c.Set(ctx, key, v, ttl); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return v, nil
}
