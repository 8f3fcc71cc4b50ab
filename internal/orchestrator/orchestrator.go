// Package orchestrator wires the Event Bus's inbound events (§4.7) through
// Session Manager validation, the Device State Store, the Logger, the Rule
// Engine, the Goal Checker, and the Task Scheduler, pushing the resulting
// outbound events back over the Event Bus. It implements
// eventbus.InboundHandler.
package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shine-lab/orchestration-core/internal/cache"
	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/eventbus"
	"github.com/shine-lab/orchestration-core/internal/eventlog"
	"github.com/shine-lab/orchestration-core/internal/explainengine"
	"github.com/shine-lab/orchestration-core/internal/logging"
	"github.com/shine-lab/orchestration-core/internal/scheduler"
	"github.com/shine-lab/orchestration-core/internal/session"
	"github.com/shine-lab/orchestration-core/internal/store"
)

// Orchestrator is the eventbus.InboundHandler implementation: the
// composition root for per-event processing.
type Orchestrator struct {
	store   *store.Store
	game    *config.Game
	explain *config.Explanation
	cache   *cache.Cache

	manager  *session.Manager
	devices  *session.DeviceStore
	sched    *scheduler.Scheduler
	logger   *eventlog.Logger
	engine   explainengine.Engine
	hub      *eventbus.Hub
}

// Deps bundles every collaborator Orchestrator needs.
type Deps struct {
	Store       *store.Store
	Game        *config.Game
	Explanation *config.Explanation
	Cache       *cache.Cache
	Manager     *session.Manager
	Scheduler   *scheduler.Scheduler
	Logger      *eventlog.Logger
	Engine      explainengine.Engine
	Hub         *eventbus.Hub
}

// New builds an Orchestrator from deps.
func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		store:   deps.Store,
		game:    deps.Game,
		explain: deps.Explanation,
		cache:   deps.Cache,
		manager: deps.Manager,
		devices: session.NewDeviceStore(deps.Store),
		sched:   deps.Scheduler,
		logger:  deps.Logger,
		engine:  deps.Engine,
		hub:     deps.Hub,
	}
}

// HandleInbound implements eventbus.InboundHandler. Every event is
// dispatched onto the named session's Executor so mutations serialize
// per-session (§5); validation failures and unknown sessions are dropped
// silently per §4.7 ("if invalid, drop silently").
func (o *Orchestrator) HandleInbound(ctx context.Context, sessionID string, raw []byte) {
	var frame eventbus.InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		logging.EventBus().Warn().Err(err).Msg("malformed inbound frame, dropping")
		return
	}
	if frame.SessionID == "" {
		frame.SessionID = sessionID
	}

	exec := o.manager.ExecutorFor(frame.SessionID)
	exec.Submit(ctx, func(ctx context.Context) {
		o.dispatch(ctx, frame.Type, frame.SessionID, raw)
	})
}

func (o *Orchestrator) dispatch(ctx context.Context, eventType, sessionID string, raw []byte) {
	if !o.validateSession(ctx, sessionID) {
		return
	}

	// Every inbound event observes a self-healed timeline: a task whose
	// window lapsed while nothing was reading or writing this session is
	// timed out here before the event itself is processed (§4.3).
	if _, err := o.sched.ReconcileTimeouts(ctx, sessionID, time.Now()); err != nil {
		return
	}

	switch eventType {
	case eventbus.EventGameStart:
		o.handleGameStart(ctx, sessionID)
	case eventbus.EventDeviceInteraction:
		o.handleDeviceInteraction(ctx, sessionID, raw)
	case eventbus.EventGameInteraction:
		o.handleGameInteraction(ctx, sessionID, raw)
	case eventbus.EventTaskTimeout:
		o.handleTaskTimeout(ctx, sessionID, raw)
	case eventbus.EventTaskAbort:
		o.handleTaskAbort(ctx, sessionID, raw)
	case eventbus.EventExplanationRequest:
		o.handleExplanationRequest(ctx, sessionID, raw)
	case eventbus.EventExplanationRating:
		o.handleExplanationRating(ctx, sessionID, raw)
	default:
		logging.EventBus().Warn().Str("type", eventType).Msg("unknown inbound event type, dropping")
	}
}

// validateSession confirms the session exists and is non-completed before
// any event is processed (§4.7).
func (o *Orchestrator) validateSession(ctx context.Context, sessionID string) bool {
	sess, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return false
	}
	return !sess.IsCompleted
}

func (o *Orchestrator) nowTimestamp(sessionStart time.Time) float64 {
	return time.Since(sessionStart).Seconds()
}
