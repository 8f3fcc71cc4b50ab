package rules

import (
	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/logging"
	"github.com/shine-lab/orchestration-core/internal/models"
)

// Fired is one rule's outcome for this evaluation round.
type Fired struct {
	Rule               config.RuleConfig
	DeviceOutcomes     []models.DeviceInteractionOutcome
	ExplanationKeys    []string
}

// Evaluate runs every configured rule against the snapshot, in declaration
// order, firing each whose preconditions all hold. A rule fires at most
// once per round regardless of how many preconditions it has (§4.5).
func Evaluate(rules []config.RuleConfig, snap Snapshot) []Fired {
	var fired []Fired
	for _, rule := range rules {
		ok, err := EvaluateAll(rule.Preconditions, snap)
		if err != nil {
			logging.Rules().Warn().Err(err).Str("rule", rule.ID).Msg("rule precondition evaluation failed, skipping")
			continue
		}
		if !ok {
			continue
		}
		fired = append(fired, buildOutcome(rule))
	}
	return fired
}

func buildOutcome(rule config.RuleConfig) Fired {
	f := Fired{Rule: rule}
	for _, action := range rule.Actions {
		switch action.Kind {
		case models.ActionDeviceInteraction:
			f.DeviceOutcomes = append(f.DeviceOutcomes, models.DeviceInteractionOutcome{
				Device:      action.Device,
				Interaction: action.Interaction,
				Value:       action.Value,
				DelaySecond: rule.DelaySeconds,
			})
		case models.ActionExplanation:
			f.ExplanationKeys = append(f.ExplanationKeys, action.ExplanationKey)
		}
	}
	return f
}

// CheckGoals reports whether every goal atom for a task holds against the
// snapshot taken after rule actions have been applied — the Goal Checker of
// §4.5, using the identical atom semantics as rule preconditions.
func CheckGoals(goals []models.Atom, snap Snapshot) (bool, error) {
	return EvaluateAll(goals, snap)
}
