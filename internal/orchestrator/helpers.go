package orchestrator

import (
	"context"
	"time"

	"github.com/shine-lab/orchestration-core/internal/eventbus"
	"github.com/shine-lab/orchestration-core/internal/models"
	"github.com/shine-lab/orchestration-core/internal/rules"
	"github.com/shine-lab/orchestration-core/internal/scheduler"
	"github.com/shine-lab/orchestration-core/internal/session"
)

// buildRuleSnapshot loads the session's current devices and in-game clock
// into a rules.Snapshot, the shared evaluation context for rule
// preconditions and goal checking (§4.5).
func (o *Orchestrator) buildRuleSnapshot(ctx context.Context, sessionID string, sessionStart time.Time) (rules.Snapshot, []models.Device, error) {
	devices, err := o.devices.GetAll(ctx, sessionID)
	if err != nil {
		return rules.Snapshot{}, nil, err
	}
	hour, minute := rules.InGameTime(o.game.Environment.Time, sessionStart, time.Now())
	return rules.Snapshot{
		Devices:     session.AsMap(devices),
		ClockHour:   hour,
		ClockMinute: minute,
	}, devices, nil
}

// currentTaskID returns the session's current task id, or "" if none.
func (o *Orchestrator) currentTaskID(ctx context.Context, sessionID string) (string, error) {
	tasks, err := o.store.GetTasks(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if t, ok := scheduler.CurrentTask(tasks, time.Now()); ok {
		return t.TaskID, nil
	}
	return "", nil
}

// applyRuleOutcomes evaluates every configured rule against snap, applying
// non-delayed DeviceInteraction outcomes immediately (persisting + pushing
// update-interaction) and scheduling delayed ones on the session's
// executor, and resolves Explanation outcomes per the configured delivery
// policy (§4.7). It logs one RULE_TRIGGER entry per fired rule.
func (o *Orchestrator) applyRuleOutcomes(ctx context.Context, sessionID string, snap rules.Snapshot) {
	fired := rules.Evaluate(o.game.RulesInOrder(), snap)
	for _, f := range fired {
		o.logRuleTrigger(ctx, sessionID, f)

		for _, outcome := range f.DeviceOutcomes {
			outcome := outcome
			if outcome.DelaySecond <= 0 {
				o.applyDeviceOutcome(ctx, sessionID, outcome)
				continue
			}
			exec := o.manager.ExecutorFor(sessionID)
			delay := time.Duration(outcome.DelaySecond * float64(time.Second))
			exec.ScheduleDelayed(delayKey(sessionID, f.Rule.ID, outcome.Device, outcome.Interaction), delay, func(ctx context.Context) {
				o.applyDeviceOutcome(ctx, sessionID, outcome)
				o.runGoalCheckAndAdvance(ctx, sessionID)
			})
		}

		for _, key := range f.ExplanationKeys {
			o.deliverRuleExplanation(ctx, sessionID, key, f.Rule.DelaySeconds)
		}
	}
}

func delayKey(parts ...string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "/"
		}
		out += p
	}
	return out
}

func (o *Orchestrator) applyDeviceOutcome(ctx context.Context, sessionID string, outcome models.DeviceInteractionOutcome) {
	if err := o.devices.Apply(ctx, sessionID, outcome.Device, outcome.Interaction, outcome.Value); err != nil {
		return
	}
	o.cache.InvalidateGameData(ctx, sessionID)
	o.hub.Push(sessionID, eventbus.PushUpdateInteraction, eventbus.UpdateInteractionPush{
		DeviceID:    outcome.Device,
		Interaction: outcome.Interaction,
		Value:       outcome.Value,
	})
}

func (o *Orchestrator) logRuleTrigger(ctx context.Context, sessionID string, f rules.Fired) {
	metadata := map[string]interface{}{
		"rule_id": f.Rule.ID,
		"actions": f.DeviceOutcomes,
	}
	entry := models.LogEntry{
		SessionID:        sessionID,
		Type:             string(models.LogRuleTrigger),
		Metadata:         metadata,
		TimestampSeconds: o.sessionElapsed(ctx, sessionID),
	}
	if _, err := o.logger.Append(ctx, entry); err != nil {
		return
	}
}

func (o *Orchestrator) sessionElapsed(ctx context.Context, sessionID string) float64 {
	sess, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return 0
	}
	return o.nowTimestamp(sess.StartTime)
}

// runGoalCheckAndAdvance re-snapshots devices, evaluates the current
// task's goals, and on success hands off to the scheduler for completion
// and pushes game-update (§4.5 Goal checker).
func (o *Orchestrator) runGoalCheckAndAdvance(ctx context.Context, sessionID string) {
	sess, err := o.store.GetSession(ctx, sessionID)
	if err != nil || sess.IsCompleted {
		return
	}
	tasks, err := o.store.GetTasks(ctx, sessionID)
	if err != nil {
		return
	}
	current, ok := scheduler.CurrentTask(tasks, time.Now())
	if !ok {
		return
	}
	tc, ok := o.game.TaskByID(current.TaskID)
	if !ok || len(tc.Goals) == 0 {
		return
	}

	snap, _, err := o.buildRuleSnapshot(ctx, sessionID, sess.StartTime)
	if err != nil {
		return
	}
	met, err := rules.CheckGoals(tc.Goals, snap)
	if err != nil || !met {
		return
	}

	outcome, err := o.sched.Complete(ctx, sessionID, current.TaskID, time.Now())
	if err != nil {
		return
	}
	o.pushGameUpdate(ctx, sessionID, outcome, "task completed")
}

// pushGameUpdate enriches a scheduler.Outcome's task list per §4.7's
// updatedTasks shape and pushes game-update.
func (o *Orchestrator) pushGameUpdate(ctx context.Context, sessionID string, outcome scheduler.Outcome, message string) {
	views := make([]eventbus.TaskView, 0, len(outcome.Tasks))
	for _, t := range outcome.Tasks {
		tc, _ := o.game.TaskByID(t.TaskID)
		var abortionOptions []string
		abortable := o.game.Tasks.GlobalAbortable()
		var env []map[string]interface{}
		if tc != nil {
			abortionOptions = tc.AbortionOptions
			abortable = tc.AbortOverride().Resolve(o.game.Tasks.GlobalAbortable())
			for _, e := range tc.Environment {
				env = append(env, map[string]interface{}{"name": e.Name, "value": e.Value})
			}
		}
		views = append(views, eventbus.TaskView{
			TaskID:          t.TaskID,
			Description:     t.Description,
			IsCompleted:     t.IsCompleted,
			IsAborted:       t.IsAborted,
			IsTimedOut:      t.IsTimedOut,
			AbortionOptions: abortionOptions,
			Abortable:       abortable,
			Environment:     env,
		})
	}

	props := make([]eventbus.DevicePropertyUpdate, 0, len(outcome.UpdatedProperties))
	for _, p := range outcome.UpdatedProperties {
		props = append(props, eventbus.DevicePropertyUpdate{Device: p.Device, Interaction: p.Interaction, Value: p.Value})
	}

	o.cache.InvalidateGameData(ctx, sessionID)
	o.hub.Push(sessionID, eventbus.PushGameUpdate, eventbus.GameUpdatePush{
		UpdatedTasks:      views,
		UpdatedProperties: props,
		Message:           message,
	})
}
