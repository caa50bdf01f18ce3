package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key does not exist (or Redis is disabled).
var ErrCacheMiss = errors.New("cache miss")

// Cache provides typed JSON caching on top of the Redis client.
// 키 네임스페이스: <prefix>:<key>
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a cache with the given key prefix.
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) key(k string) string {
	return fmt.Sprintf("%s:%s", c.prefix, k)
}

// Get retrieves a value and unmarshals it into dest.
// Returns ErrCacheMiss when absent or when Redis is disabled.
func (c *Cache) Get(ctx context.Context, k string, dest interface{}) error {
	if !c.client.Enabled() {
		return ErrCacheMiss
	}

	data, err := c.client.Redis().Get(ctx, c.key(k)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return nil
}

// Set stores a value as JSON with the given TTL. No-op when disabled.
func (c *Cache) Set(ctx context.Context, k string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	if err := c.client.Redis().Set(ctx, c.key(k), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete removes a key. No-op when disabled.
func (c *Cache) Delete(ctx context.Context, k string) error {
	if !c.client.Enabled() {
		return nil
	}
	if err := c.client.Redis().Del(ctx, c.key(k)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
