package explainengine

import (
	"context"

	"github.com/shine-lab/orchestration-core/internal/eventlog"
)

func init() {
	Register("none", func(Deps) (Engine, error) {
		return noneEngine{}, nil
	})
}

// noneEngine is selected when explanation.yaml sets mode: none. Every
// operation reports no explanation available rather than erroring, so
// callers never need a separate "is an engine configured" branch.
type noneEngine struct{}

func (noneEngine) Kind() string { return "none" }

func (noneEngine) NotifyLog(context.Context, eventlog.Metadata) (*Result, error) {
	return nil, nil
}

func (noneEngine) FromRuleKey(string) (Result, bool) {
	return Result{}, false
}

func (noneEngine) RequestExplanation(context.Context, string, *string) (Result, bool, error) {
	return Result{Success: false, Explanation: "no explanation available"}, true, nil
}
