// Package eventbus is the per-client duplex channel of §4.7: one
// WebSocket connection per session (the browser), a register/unregister/
// broadcast actor keyed by session id, following the Hub/Client shape
// websocket/notifier.go's Manager/Hub pair implies (their defining file
// wasn't in the retrieved set, but the register-map-plus-per-client-send-
// channel idiom is inferred from NotifySessionEvent's call sites).
package eventbus

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shine-lab/orchestration-core/internal/logging"
)

// InboundHandler processes one raw inbound frame for a session. The
// orchestrator package implements this; eventbus only owns transport.
type InboundHandler interface {
	HandleInbound(ctx context.Context, sessionID string, raw []byte)
}

// Hub owns every live client connection, keyed by session id. At most one
// client may be registered per session; registering a second one replaces
// the first (a reconnect supersedes a stale connection).
type Hub struct {
	handler InboundHandler

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub builds a Hub that dispatches inbound frames to handler. handler
// may be nil and set later via SetHandler, breaking the construction-order
// cycle between Hub and its handler (the orchestrator needs a *Hub to push
// through, and the Hub needs the orchestrator to dispatch into).
func NewHub(handler InboundHandler) *Hub {
	return &Hub{
		handler: handler,
		clients: map[string]*Client{},
	}
}

// SetHandler assigns the inbound dispatch target.
func (h *Hub) SetHandler(handler InboundHandler) {
	h.handler = handler
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	if existing, ok := h.clients[c.sessionID]; ok {
		close(existing.send)
	}
	h.clients[c.sessionID] = c
	h.mu.Unlock()
	logging.EventBus().Info().Str("session_id", c.sessionID).Msg("client registered")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if h.clients[c.sessionID] == c {
		delete(h.clients, c.sessionID)
	}
	h.mu.Unlock()
	logging.EventBus().Info().Str("session_id", c.sessionID).Msg("client unregistered")
}

// Push sends one outbound event to a session's client, if connected.
// Pushes to a disconnected session are silently dropped (§5): the channel
// send never blocks the caller, matching the non-blocking
// select/default pattern used for broadcast in this codebase's lineage.
func (h *Hub) Push(sessionID, eventType string, payload interface{}) {
	h.mu.RLock()
	client, ok := h.clients[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(outboundFrame{Type: eventType, Payload: payload})
	if err != nil {
		logging.EventBus().Error().Err(err).Str("session_id", sessionID).Msg("failed to marshal outbound frame")
		return
	}

	select {
	case client.send <- data:
	default:
		logging.EventBus().Warn().Str("session_id", sessionID).Msg("client send buffer full, dropping push")
	}
}

// Connected reports whether a session currently has a live client.
func (h *Hub) Connected(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[sessionID]
	return ok
}

type outboundFrame struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
