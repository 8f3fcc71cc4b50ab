package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_DisabledIsNoOp(t *testing.T) {
	c := New("", "", 0)
	assert.False(t, c.IsEnabled())

	ctx := context.Background()
	assert.NoError(t, c.Ping(ctx))

	_, ok := c.Get(ctx, "some-key")
	assert.False(t, ok)

	c.Set(ctx, "some-key", "value", 0)
	c.DeletePattern(ctx, "some-*")

	_, ok = c.GetGameData(ctx, "session-1")
	assert.False(t, ok)
}

func TestGameDataKey(t *testing.T) {
	assert.Equal(t, "gamedata:session-1", GameDataKey("session-1"))
	assert.Equal(t, "gamedata:session-1*", GameDataPattern("session-1"))
}
