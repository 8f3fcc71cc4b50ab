package cache

import (
	"context"
	"fmt"
	"time"
)

// gameDataTTL bounds how long a cached /game-data body can go stale before
// a natural expiry, independent of explicit invalidation.
const gameDataTTL = 5 * time.Second

// GameDataKey builds the cache key for one session's game-data response,
// following cache/keys.go's prefix-plus-id key-builder shape.
func GameDataKey(sessionID string) string {
	return fmt.Sprintf("gamedata:%s", sessionID)
}

// GameDataPattern matches every cache entry for a session, for bulk
// invalidation on task/device mutation.
func GameDataPattern(sessionID string) string {
	return fmt.Sprintf("gamedata:%s*", sessionID)
}

// GetGameData returns the cached /game-data response body for a session.
func (c *Cache) GetGameData(ctx context.Context, sessionID string) (string, bool) {
	return c.Get(ctx, GameDataKey(sessionID))
}

// SetGameData stores a freshly computed /game-data response body.
func (c *Cache) SetGameData(ctx context.Context, sessionID, body string) {
	c.Set(ctx, GameDataKey(sessionID), body, gameDataTTL)
}

// InvalidateGameData drops a session's cached game-data, called after any
// task or device mutation so the next read recomputes it.
func (c *Cache) InvalidateGameData(ctx context.Context, sessionID string) {
	c.DeletePattern(ctx, GameDataPattern(sessionID))
}
