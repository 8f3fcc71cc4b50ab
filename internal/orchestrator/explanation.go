package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/eventbus"
	"github.com/shine-lab/orchestration-core/internal/explainengine"
	"github.com/shine-lab/orchestration-core/internal/models"
)

// deliverRuleExplanation resolves a rule-fired Explanation action's canned
// text and applies the configured delivery policy (§4.7). Only the
// integrated engine produces a result here (FromRuleKey reports ok=false
// for external/none engines, since those never originate from a local
// lookup table); delay, if any, defers both persistence and push.
func (o *Orchestrator) deliverRuleExplanation(ctx context.Context, sessionID, key string, delaySeconds float64) {
	result, ok := o.engine.FromRuleKey(key)
	if !ok {
		return
	}

	deliver := func(ctx context.Context) {
		o.applyIntegratedPolicy(ctx, sessionID, "", result)
	}
	if delaySeconds <= 0 {
		deliver(ctx)
		return
	}
	exec := o.manager.ExecutorFor(sessionID)
	exec.ScheduleDelayed(delayKey(sessionID, "explanation", key), time.Duration(delaySeconds*float64(time.Second)), deliver)
}

func (o *Orchestrator) applyIntegratedPolicy(ctx context.Context, sessionID, taskID string, result explainengine.Result) {
	if o.explain == nil {
		return
	}
	switch o.explain.Trigger {
	case config.TriggerOnDemand:
		if err := o.store.SetExplanationCache(ctx, sessionID, &result.Explanation); err != nil {
			return
		}
	default: // automatic
		o.persistAndPushExplanation(ctx, sessionID, taskID, result)
	}
}

func (o *Orchestrator) persistAndPushExplanation(ctx context.Context, sessionID, taskID string, result explainengine.Result) {
	explanation := &models.Explanation{
		ExplanationID: uuid.NewString(),
		SessionID:     sessionID,
		TaskID:        taskID,
		Explanation:   result.Explanation,
		CreatedAt:     time.Now(),
	}
	if err := o.store.InsertExplanation(ctx, explanation); err != nil {
		return
	}
	o.hub.Push(sessionID, eventbus.PushExplanation, eventbus.ExplanationPush{
		Explanation:   explanation.Explanation,
		ExplanationID: explanation.ExplanationID,
	})
}

func (o *Orchestrator) handleExplanationRequest(ctx context.Context, sessionID string, raw []byte) {
	var payload eventbus.ExplanationRequestPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	result, delivered, err := o.engine.RequestExplanation(ctx, sessionID, payload.UserMessage)
	if err != nil || !delivered {
		return
	}
	if !result.Success {
		// Fallback text ("no explanation available") is pushed, not persisted.
		o.hub.Push(sessionID, eventbus.PushExplanation, eventbus.ExplanationPush{Explanation: result.Explanation})
		return
	}
	o.persistAndPushExplanation(ctx, sessionID, "", result)
}

func (o *Orchestrator) handleExplanationRating(ctx context.Context, sessionID string, raw []byte) {
	var payload eventbus.ExplanationRatingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	_ = o.store.RateExplanation(ctx, payload.ExplanationID, payload.Rating)
}
