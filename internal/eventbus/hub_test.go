package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type noopHandler struct{}

func (noopHandler) HandleInbound(context.Context, string, []byte) {}

func TestHub_PushToDisconnectedSessionIsNoOp(t *testing.T) {
	h := NewHub(noopHandler{})
	assert.False(t, h.Connected("s1"))
	// Must not panic or block when nothing is registered.
	h.Push("s1", PushGameUpdate, GameUpdatePush{Message: "hello"})
}

func TestHub_RegisterUnregisterTracksConnected(t *testing.T) {
	h := NewHub(noopHandler{})
	client := &Client{hub: h, sessionID: "s1", send: make(chan []byte, 1)}

	h.register(client)
	assert.True(t, h.Connected("s1"))

	h.Push("s1", PushUpdateInteraction, UpdateInteractionPush{DeviceID: "oven", Interaction: "on", Value: true})
	select {
	case msg := <-client.send:
		assert.Contains(t, string(msg), "update-interaction")
	default:
		t.Fatal("expected a queued message")
	}

	h.unregister(client)
	assert.False(t, h.Connected("s1"))
}

func TestHub_PushDropsWhenSendBufferFull(t *testing.T) {
	h := NewHub(noopHandler{})
	client := &Client{hub: h, sessionID: "s1", send: make(chan []byte, 1)}
	h.register(client)

	h.Push("s1", PushGameUpdate, GameUpdatePush{})
	// Buffer now full (capacity 1); a second push must drop rather than block.
	h.Push("s1", PushGameUpdate, GameUpdatePush{})
	assert.Len(t, client.send, 1)
}
