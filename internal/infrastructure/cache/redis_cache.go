package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisResultCache implements port.ResultCache on Redis.
type RedisResultCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisResultCache creates a cache connected to addr. Entries expire after ttl;
// a zero ttl keeps them until evicted.
func NewRedisResultCache(addr string, ttl time.Duration) *RedisResultCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return NewRedisResultCacheFromClient(client, ttl)
}

// NewRedisResultCacheFromClient wraps an existing client.
func NewRedisResultCacheFromClient(client redis.Cmdable, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{client: client, ttl: ttl}
}

// Get returns the cached value for key.
func (c *RedisResultCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value under key.
func (c *RedisResultCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (c *RedisResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client when it owns connections.
func (c *RedisResultCache) Close() error {
	if closer, ok := c.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
