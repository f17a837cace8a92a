// Package redis provides Redis-backed adapters: a result cache backend for
// sharing computed results between processes, and an idempotency store.
package redis

import (
	"context"
	"errors"

	"time"

	"github.com/redis/go-redis/v9"
)

// Cache implements resultcache.Backend using Redis.
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache creates a new Cache.
func NewCache(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		prefix: "cache:",
	}
}

// Get retrieves a value by key. A missing key is (nil, nil).
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a value with TTL. Redis expires the key itself, so there is no
// sweep on this backend.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Delete removes the given keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = c.prefix + key
	}
	return c.client.Del(ctx, full...).Err()
}

// DeletePrefix removes every key starting with prefix, scanning in batches
// to keep Redis responsive.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	pattern := c.prefix + prefix + "*"

	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
