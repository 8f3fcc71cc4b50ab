// Package explainengine implements the three explanation-delivery
// transports of §4.7: an engine "integrated" into this process using
// canned text, and two external adapters (REST, WebSocket) behind one
// capability interface so the rest of the core never branches on mode.
package explainengine

import (
	"context"

	"github.com/shine-lab/orchestration-core/internal/eventlog"
)

// Result is one produced (or absent) explanation.
type Result struct {
	Success     bool
	Explanation string
}

// Engine is the capability surface every transport implements.
type Engine interface {
	// Kind identifies the transport by its registry name.
	Kind() string

	// NotifyLog hands one log metadata snapshot to an external engine,
	// which reacts to the event stream rather than only to rule actions.
	// Integrated engines no-op here (nil, nil) since their explanations
	// originate from fired rule actions, not raw log entries. Nothing in
	// this repository calls NotifyLog: log appends (eventlog.Logger.Append)
	// are not forwarded to the REST or WebSocket engine.
	NotifyLog(ctx context.Context, meta eventlog.Metadata) (*Result, error)

	// FromRuleKey resolves a canned-text explanation fired by the rule
	// engine's Explanation action. External engines report ok=false;
	// their explanations never originate from a local lookup table.
	FromRuleKey(key string) (result Result, ok bool)

	// RequestExplanation handles an explicit explanation_request event.
	// For the on_demand+integrated policy this returns the session's
	// cached explanation; for REST it calls the engine synchronously;
	// for WebSocket it forwards the request and returns delivered=false since
	// the response arrives later via the async delivery callback.
	RequestExplanation(ctx context.Context, sessionID string, userMessage *string) (result Result, delivered bool, err error)
}

// Factory builds an Engine from the loaded explanation config. Transports
// register themselves by name in init(), following the named-registry
// idiom used for pluggable implementations elsewhere in this codebase.
type Factory func(deps Deps) (Engine, error)
