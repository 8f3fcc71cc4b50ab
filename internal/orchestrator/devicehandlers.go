package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/shine-lab/orchestration-core/internal/eventbus"
	"github.com/shine-lab/orchestration-core/internal/models"
)

// handleGameStart emits TASK_BEGIN for the session's current task the first
// time a game-start event arrives for it (§4.7: "if the session has no
// logs, emit TASK_BEGIN for the current task").
func (o *Orchestrator) handleGameStart(ctx context.Context, sessionID string) {
	logs, err := o.store.AllLogs(ctx, sessionID)
	if err != nil || len(logs) > 0 {
		return
	}
	taskID, err := o.currentTaskID(ctx, sessionID)
	if err != nil || taskID == "" {
		return
	}
	sess, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return
	}
	entry := models.LogEntry{
		SessionID:        sessionID,
		Type:             string(models.LogTaskBegin),
		Metadata:         map[string]interface{}{"task_id": taskID},
		TimestampSeconds: o.nowTimestamp(sess.StartTime),
	}
	o.logger.Append(ctx, entry)
}

// handleDeviceInteraction persists the interaction (unless the device's
// configured interaction type is StatelessAction, which is never written
// to the Device Store), logs DEVICE_INTERACTION, bumps the current task's
// interaction_times counter, and runs the Rule Engine and Goal Checker
// against the resulting state (§4.4, §4.5, §4.7).
func (o *Orchestrator) handleDeviceInteraction(ctx context.Context, sessionID string, raw []byte) {
	var payload eventbus.DeviceInteractionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}

	sess, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return
	}

	stateless := o.isStatelessInteraction(payload.Device, payload.Interaction)
	outcome := models.DeviceInteractionOutcome{
		Device:      payload.Device,
		Interaction: payload.Interaction,
		Value:       payload.Value,
	}
	if !stateless {
		o.applyDeviceOutcome(ctx, sessionID, outcome)
	}

	taskID, taskErr := o.currentTaskID(ctx, sessionID)
	if taskErr == nil && taskID != "" {
		o.store.IncrementInteractionTimes(ctx, sessionID, taskID)
	}

	entry := models.LogEntry{
		SessionID: sessionID,
		Type:      string(models.LogDeviceInteraction),
		Metadata: map[string]interface{}{
			"device":      payload.Device,
			"interaction": payload.Interaction,
			"value":       payload.Value,
		},
		TimestampSeconds: o.nowTimestamp(sess.StartTime),
	}
	o.logger.Append(ctx, entry)

	snap, _, err := o.buildRuleSnapshot(ctx, sessionID, sess.StartTime)
	if err != nil {
		return
	}
	if stateless {
		snap = snap.WithStateless(payload.Device, payload.Interaction, payload.Value)
	}
	for name, value := range sess.CustomData {
		snap = snap.WithStateless("", name, value)
	}
	if taskErr == nil && taskID != "" {
		snap = snap.WithStateless("", "task", taskID)
	}
	o.applyRuleOutcomes(ctx, sessionID, snap)
	o.runGoalCheckAndAdvance(ctx, sessionID)
}

func (o *Orchestrator) isStatelessInteraction(deviceID, interaction string) bool {
	dc, ok := o.game.DeviceByID(deviceID)
	if !ok {
		return false
	}
	for _, ic := range dc.Interactions {
		if ic.Name == interaction {
			return ic.Type == models.InteractionStatelessAction
		}
	}
	return false
}

// handleGameInteraction logs a pass-through entry with no side effects
// (§4.7).
func (o *Orchestrator) handleGameInteraction(ctx context.Context, sessionID string, raw []byte) {
	var payload eventbus.GameInteractionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	sess, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return
	}
	entry := models.LogEntry{
		SessionID:        sessionID,
		Type:             payload.Type,
		Metadata:         map[string]interface{}{"data": payload.Data},
		TimestampSeconds: o.nowTimestamp(sess.StartTime),
	}
	o.logger.Append(ctx, entry)
}
