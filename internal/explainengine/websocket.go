package explainengine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/shine-lab/orchestration-core/internal/eventlog"
	"github.com/shine-lab/orchestration-core/internal/logging"
)

func init() {
	Register("websocket", func(deps Deps) (Engine, error) {
		return &wsEngine{auth: NewCallbackAuthenticator()}, nil
	})
}

// DeliveryFunc is invoked when an explanation_receival frame arrives for a
// session. cmd/server wires this to push the result to that session's
// client connection through the eventbus Hub.
type DeliveryFunc func(sessionID string, result Result)

// wsEngine is the WebSocket-transport external engine. Unlike restEngine,
// which dials out per call, the engine here dials *in*: it holds the one
// long-lived connection an external engine authenticates with a shared API
// key (callbackauth.go), and pushes user_log frames over it while
// asynchronous explanation_receival frames arrive on the same socket and
// are routed back to the originating session by user_id.
type wsEngine struct {
	auth *CallbackAuthenticator

	mu       sync.Mutex
	conn     *websocket.Conn
	delivery DeliveryFunc
}

func (e *wsEngine) Kind() string { return "websocket" }

// SetConn installs the engine's live connection, replacing any prior one
// (an engine reconnect supersedes its predecessor).
func (e *wsEngine) SetConn(conn *websocket.Conn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.conn = conn
}

// SetDeliveryFunc installs the callback used to route asynchronous
// explanation_receival frames back to sessions.
func (e *wsEngine) SetDeliveryFunc(fn DeliveryFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delivery = fn
}

type userLogFrame struct {
	Type string           `json:"type"`
	Meta eventlog.Metadata `json:"metadata"`
}

func (e *wsEngine) NotifyLog(_ context.Context, meta eventlog.Metadata) (*Result, error) {
	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()
	if conn == nil {
		logging.ExplainEngine().Warn().Msg("websocket engine not connected, dropping user_log frame")
		return nil, nil
	}
	frame := userLogFrame{Type: "user_log", Meta: meta}
	if err := conn.WriteJSON(frame); err != nil {
		return nil, fmt.Errorf("explainengine: write user_log frame: %w", err)
	}
	// Delivery is asynchronous: the engine pushes explanation_receival
	// later, handled by HandleInbound.
	return nil, nil
}

func (e *wsEngine) FromRuleKey(string) (Result, bool) {
	return Result{}, false
}

func (e *wsEngine) RequestExplanation(_ context.Context, sessionID string, userMessage *string) (Result, bool, error) {
	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()
	if conn == nil {
		return Result{Success: false, Explanation: "no explanation available"}, true, nil
	}
	payload := map[string]interface{}{"type": "explanation_request", "user_id": sessionID}
	if userMessage != nil {
		payload["user_message"] = *userMessage
	}
	if err := conn.WriteJSON(payload); err != nil {
		return Result{}, false, fmt.Errorf("explainengine: write explanation_request frame: %w", err)
	}
	// Response arrives later via explanation_receival; the caller does not
	// block waiting for it.
	return Result{}, false, nil
}

type explanationReceivalFrame struct {
	Type        string `json:"type"`
	UserID      string `json:"user_id"`
	Explanation string `json:"explanation"`
}

// HandleInbound parses one frame read off the engine's connection and, for
// an explanation_receival frame, routes it to the matching session via the
// installed delivery callback.
func (e *wsEngine) HandleInbound(raw []byte) error {
	var frame explanationReceivalFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return fmt.Errorf("explainengine: decode inbound frame: %w", err)
	}
	if frame.Type != "explanation_receival" {
		return nil
	}
	e.mu.Lock()
	deliver := e.delivery
	e.mu.Unlock()
	if deliver == nil {
		logging.ExplainEngine().Warn().Str("session_id", frame.UserID).Msg("explanation_receival with no delivery callback installed")
		return nil
	}
	deliver(frame.UserID, Result{Success: true, Explanation: frame.Explanation})
	return nil
}
