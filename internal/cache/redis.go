package cache

import (
	"context"
	"time"

	"sibyl/internal/adapters/redis"
	"sibyl/pkg/errors"
)

// RedisStore is the durable Store variant backed by Redis. TTL handling is
// delegated to Redis itself.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a connected Redis client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the cached value if present
func (r *RedisStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	err := r.client.Get(ctx, key, dest)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, errors.Wrap(err, "cache get")
	}
	return true, nil
}

// Set stores a value under key for ttl
func (r *RedisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl); err != nil {
		return errors.Wrap(err, "cache set")
	}
	return nil
}

// Delete removes a key
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Delete(ctx, key); err != nil {
		return errors.Wrap(err, "cache delete")
	}
	return nil
}
