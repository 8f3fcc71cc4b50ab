package explainengine

import (
	"context"
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/eventlog"
	"github.com/shine-lab/orchestration-core/internal/store"
)

func init() {
	Register("integrated", func(deps Deps) (Engine, error) {
		if deps.Config == nil {
			return nil, fmt.Errorf("explainengine: integrated mode requires explanation config")
		}
		return &integratedEngine{
			cannedText: deps.Config.CannedText,
			trigger:    deps.Config.Trigger,
			store:      deps.Store,
			sanitizer:  bluemonday.StrictPolicy(),
		}, nil
	})
}

// integratedEngine resolves explanations from explanation.yaml's canned-text
// table, keyed by the rule action's ExplanationKey. It never calls out to
// an external process.
type integratedEngine struct {
	cannedText map[string]string
	trigger    config.TriggerPolicy
	store      *store.Store
	sanitizer  *bluemonday.Policy
}

func (e *integratedEngine) Kind() string { return "integrated" }

func (e *integratedEngine) NotifyLog(context.Context, eventlog.Metadata) (*Result, error) {
	return nil, nil
}

func (e *integratedEngine) FromRuleKey(key string) (Result, bool) {
	text, ok := e.cannedText[key]
	if !ok {
		return Result{}, false
	}
	return Result{Success: true, Explanation: e.sanitizer.Sanitize(text)}, true
}

// UpdateCache overwrites the session's cached explanation, used on the
// on_demand trigger after a rule-fired explanation rather than pushing it
// immediately.
func (e *integratedEngine) UpdateCache(ctx context.Context, sessionID, text string) error {
	return e.store.SetExplanationCache(ctx, sessionID, &text)
}

// IsAutomatic reports whether fired explanations should push immediately
// rather than wait in the cache for an explicit request.
func (e *integratedEngine) IsAutomatic() bool {
	return e.trigger == config.TriggerAutomatic
}

func (e *integratedEngine) RequestExplanation(ctx context.Context, sessionID string, _ *string) (Result, bool, error) {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return Result{}, false, fmt.Errorf("explainengine: request explanation: %w", err)
	}
	if sess.ExplanationCache == nil || *sess.ExplanationCache == "" {
		return Result{Success: false, Explanation: "no explanation available"}, true, nil
	}
	return Result{Success: true, Explanation: *sess.ExplanationCache}, true, nil
}
