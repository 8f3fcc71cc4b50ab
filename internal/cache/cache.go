// Package cache wraps go-redis for response caching of the read-heavy
// /game-data endpoint, following the enabled-flag-plus-pattern-invalidation
// shape of cache/keys.go and cache/middleware.go. The Cache type itself
// wasn't present in the retrieved teacher files (only its call sites were),
// so it's authored fresh here against the same redis/go-redis/v9 client.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shine-lab/orchestration-core/internal/logging"
)

// Cache wraps a redis client. A nil underlying client (cache disabled)
// makes every method a safe no-op, so callers never need a separate
// "is caching on" branch.
type Cache struct {
	client *redis.Client
}

// New connects to addr/password. If addr is empty, caching is disabled and
// the returned Cache degrades every call to a no-op.
func New(addr, password string, db int) *Cache {
	if addr == "" {
		return &Cache{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{client: client}
}

// IsEnabled reports whether a Redis client is configured.
func (c *Cache) IsEnabled() bool {
	return c.client != nil
}

// Ping verifies connectivity at boot; failures are logged but non-fatal,
// since the cache is an optimization and not required for correctness.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.IsEnabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Get returns the cached value for key, or ("", false) on miss or when
// disabled.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if !c.IsEnabled() {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores value under key with the given TTL.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if !c.IsEnabled() {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logging.Store().Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// DeletePattern removes every key matching pattern, used to invalidate a
// session's cached game-data on any task/device mutation.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	if !c.IsEnabled() {
		return
	}
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logging.Store().Warn().Err(err).Str("pattern", pattern).Msg("cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logging.Store().Warn().Err(err).Str("pattern", pattern).Msg("cache delete failed")
	}
}
