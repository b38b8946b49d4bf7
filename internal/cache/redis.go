package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key the dashboard writes to Redis.
const KeyPrefix = "odessarp:cache:"

// RedisStore is a Store backed by go-redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already connected client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, KeyPrefix+key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, KeyPrefix+key).Err()
}

func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	return s.deleteByPattern(ctx, KeyPrefix+prefix+"*")
}

// Clear removes only the dashboard's keys, never the whole Redis database.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.deleteByPattern(ctx, KeyPrefix+"*")
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) deleteByPattern(ctx context.Context, pattern string) error {
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
