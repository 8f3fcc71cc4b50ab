package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shine-lab/orchestration-core/internal/eventbus"
	"github.com/shine-lab/orchestration-core/internal/models"
)

// handleTaskTimeout confirms the task's window has actually elapsed, logs
// TASK_TIMEOUT, and applies the Task Scheduler's timeout transition
// (§4.6, §4.7).
func (o *Orchestrator) handleTaskTimeout(ctx context.Context, sessionID string, raw []byte) {
	var payload eventbus.TaskTimeoutPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}

	task, err := o.store.GetTask(ctx, sessionID, payload.TaskID)
	if err != nil || task.IsTerminal() {
		return
	}
	now := time.Now()
	if task.EndTime.After(now) {
		return
	}

	// TASK_TIMEOUT is logged by the scheduler itself (internal/scheduler/
	// scheduler.go, Timeout), so it logs identically whether reached via
	// this explicit event or via reconciliation.
	outcome, err := o.sched.Timeout(ctx, sessionID, payload.TaskID, now)
	if err != nil {
		return
	}
	o.pushGameUpdate(ctx, sessionID, outcome, "task timed out")
}

// handleTaskAbort validates the requested abort option against the
// task's configured abortionOptions, logs ABORT_TASK, and applies the
// Task Scheduler's abort transition (§4.6, §4.7).
func (o *Orchestrator) handleTaskAbort(ctx context.Context, sessionID string, raw []byte) {
	var payload eventbus.TaskAbortPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}

	tc, ok := o.game.TaskByID(payload.TaskID)
	if !ok || !containsString(tc.AbortionOptions, payload.AbortOption) {
		return
	}

	entry := models.LogEntry{
		SessionID: sessionID,
		Type:      string(models.LogAbortTask),
		Metadata: map[string]interface{}{
			"task_id":     payload.TaskID,
			"abortOption": payload.AbortOption,
		},
		TimestampSeconds: o.sessionElapsed(ctx, sessionID),
	}
	o.logger.Append(ctx, entry)

	outcome, err := o.sched.Abort(ctx, sessionID, payload.TaskID, payload.AbortOption, time.Now())
	if err != nil {
		return
	}
	o.pushGameUpdate(ctx, sessionID, outcome, "task aborted")
}

func containsString(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}
