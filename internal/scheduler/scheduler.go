// Package scheduler implements the Task Scheduler of §4.3: terminal task
// transitions (completion, abort, timeout), the re-timing cascade that
// follows any of them, and the lazy timeout reconciliation sweep run
// before any read or inbound event is processed.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/eventlog"
	"github.com/shine-lab/orchestration-core/internal/models"
	"github.com/shine-lab/orchestration-core/internal/store"
)

// Scheduler owns task transitions for every session, backed by the
// persistent store and the static task config needed to compute re-timed
// windows and re-apply default properties. It logs TASK_COMPLETED,
// TASK_TIMEOUT and TASK_BEGIN itself so every terminal transition logs
// identically whether it was reached by an explicit inbound event or by
// lazy/periodic reconciliation (§4.3, §4.6).
type Scheduler struct {
	store  *store.Store
	game   *config.Game
	logger *eventlog.Logger
}

// New builds a Scheduler over game, st and logger.
func New(st *store.Store, game *config.Game, logger *eventlog.Logger) *Scheduler {
	return &Scheduler{store: st, game: game, logger: logger}
}

// logTransition appends one log entry timestamped against the session's
// elapsed time at now. Failures are swallowed, matching every other log
// call site in this codebase (a logging failure must never abort a
// transition already committed to the store).
func (s *Scheduler) logTransition(ctx context.Context, sessionID string, logType models.LogType, taskID string, now time.Time) {
	if s.logger == nil {
		return
	}
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return
	}
	entry := models.LogEntry{
		SessionID:        sessionID,
		Type:             string(logType),
		Metadata:         map[string]interface{}{"task_id": taskID},
		TimestampSeconds: now.Sub(sess.StartTime).Seconds(),
	}
	s.logger.Append(ctx, entry)
}

// PropertyUpdate is one (device, interaction, new value) tuple produced by
// applying a just-started task's defaultDeviceProperties during a re-timing
// cascade.
type PropertyUpdate struct {
	Device      string
	Interaction string
	Value       interface{}
}

// Outcome summarizes one transition: the updated task list (after re-timing)
// and any device property overwrites the cascade produced.
type Outcome struct {
	Tasks             []models.Task
	UpdatedProperties []PropertyUpdate
	Changed           bool
}

// Complete applies the Completion transition to taskID (§4.3).
func (s *Scheduler) Complete(ctx context.Context, sessionID, taskID string, now time.Time) (Outcome, error) {
	task, err := s.store.GetTask(ctx, sessionID, taskID)
	if err != nil {
		return Outcome{}, fmt.Errorf("scheduler: complete: %w", err)
	}
	duration := now.Sub(task.StartTime).Seconds()
	if err := s.store.SetTaskWindow(ctx, sessionID, taskID, task.StartTime, now); err != nil {
		return Outcome{}, fmt.Errorf("scheduler: complete: %w", err)
	}
	if err := s.store.FinishTask(ctx, sessionID, taskID, models.LogTaskCompleted, "", duration, now); err != nil {
		return Outcome{}, fmt.Errorf("scheduler: complete: %w", err)
	}
	s.logTransition(ctx, sessionID, models.LogTaskCompleted, taskID, now)
	return s.retimeCascade(ctx, sessionID, task.TaskOrder, now)
}

// Abort applies the Abort transition, recording reason as given. Checking
// reason against the task's abortionOptions is left to the caller
// (orchestrator.handleTaskAbort).
func (s *Scheduler) Abort(ctx context.Context, sessionID, taskID, reason string, now time.Time) (Outcome, error) {
	task, err := s.store.GetTask(ctx, sessionID, taskID)
	if err != nil {
		return Outcome{}, fmt.Errorf("scheduler: abort: %w", err)
	}
	duration := now.Sub(task.StartTime).Seconds()
	if err := s.store.SetTaskWindow(ctx, sessionID, taskID, task.StartTime, now); err != nil {
		return Outcome{}, fmt.Errorf("scheduler: abort: %w", err)
	}
	if err := s.store.FinishTask(ctx, sessionID, taskID, models.LogAbortTask, reason, duration, now); err != nil {
		return Outcome{}, fmt.Errorf("scheduler: abort: %w", err)
	}
	return s.retimeCascade(ctx, sessionID, task.TaskOrder, now)
}

// Timeout applies the Timeout transition: duration is fixed at the
// configured window's length, not wall-clock elapsed (§4.3: "duration =
// configured_end_time - start_time").
func (s *Scheduler) Timeout(ctx context.Context, sessionID, taskID string, now time.Time) (Outcome, error) {
	task, err := s.store.GetTask(ctx, sessionID, taskID)
	if err != nil {
		return Outcome{}, fmt.Errorf("scheduler: timeout: %w", err)
	}
	duration := task.EndTime.Sub(task.StartTime).Seconds()
	if err := s.store.FinishTask(ctx, sessionID, taskID, models.LogTaskTimeout, "", duration, task.EndTime); err != nil {
		return Outcome{}, fmt.Errorf("scheduler: timeout: %w", err)
	}
	s.logTransition(ctx, sessionID, models.LogTaskTimeout, taskID, now)
	return s.retimeCascade(ctx, sessionID, task.TaskOrder, now)
}

// retimeCascade re-times every non-terminal task after order k, starting
// from cursor=now, then applies defaultDeviceProperties of the task that
// immediately follows k (§4.3).
func (s *Scheduler) retimeCascade(ctx context.Context, sessionID string, k int, now time.Time) (Outcome, error) {
	tasks, err := s.store.GetTasks(ctx, sessionID)
	if err != nil {
		return Outcome{}, fmt.Errorf("scheduler: retime cascade: %w", err)
	}

	cursor := now
	var nextTaskID string
	for i := range tasks {
		t := &tasks[i]
		if t.TaskOrder <= k || t.IsTerminal() {
			continue
		}
		if nextTaskID == "" {
			nextTaskID = t.TaskID
		}
		tc, ok := s.game.TaskByID(t.TaskID)
		timer := s.game.Tasks.Timer
		if ok {
			timer = tc.EffectiveTimer(s.game.Tasks.Timer)
		}
		end := cursor.Add(time.Duration(timer * float64(time.Second)))
		if err := s.store.SetTaskWindow(ctx, sessionID, t.TaskID, cursor, end); err != nil {
			return Outcome{}, fmt.Errorf("scheduler: retime cascade: %w", err)
		}
		t.StartTime, t.EndTime = cursor, end
		cursor = end
	}

	var updates []PropertyUpdate
	if nextTaskID != "" {
		s.logTransition(ctx, sessionID, models.LogTaskBegin, nextTaskID, now)
		updates, err = s.applyDefaultProperties(ctx, sessionID, nextTaskID)
		if err != nil {
			return Outcome{}, fmt.Errorf("scheduler: retime cascade: %w", err)
		}
	}

	final, err := s.store.GetTasks(ctx, sessionID)
	if err != nil {
		return Outcome{}, fmt.Errorf("scheduler: retime cascade: %w", err)
	}
	return Outcome{Tasks: final, UpdatedProperties: updates, Changed: true}, nil
}

func (s *Scheduler) applyDefaultProperties(ctx context.Context, sessionID, taskID string) ([]PropertyUpdate, error) {
	tc, ok := s.game.TaskByID(taskID)
	if !ok || len(tc.DefaultDeviceProperties) == 0 {
		return nil, nil
	}
	var updates []PropertyUpdate
	for _, dp := range tc.DefaultDeviceProperties {
		dev, err := s.store.GetDevice(ctx, sessionID, dp.Device)
		if err != nil {
			return nil, fmt.Errorf("apply default properties: %w", err)
		}
		if interaction := dev.Find(dp.Interaction); interaction != nil {
			interaction.Value = dp.Value
		} else {
			dev.Interactions = append(dev.Interactions, models.Interaction{Name: dp.Interaction, Value: dp.Value})
		}
		if err := s.store.SaveDevice(ctx, dev); err != nil {
			return nil, fmt.Errorf("apply default properties: %w", err)
		}
		updates = append(updates, PropertyUpdate{Device: dp.Device, Interaction: dp.Interaction, Value: dp.Value})
	}
	return updates, nil
}

// CurrentTask returns the unique non-terminal task whose window contains
// now, or (nil, false) if every task is terminal.
func CurrentTask(tasks []models.Task, now time.Time) (*models.Task, bool) {
	for i := range tasks {
		if tasks[i].IsCurrent(now) {
			return &tasks[i], true
		}
	}
	return nil, false
}

// ReconcileTimeouts sweeps a session's tasks for expired-but-non-terminal
// ones and times each out in ascending task_order (§4.3's lazy
// reconciliation), run before any read or inbound-event processing.
// Returns the final task list and every property update the resulting
// cascade(s) produced.
func (s *Scheduler) ReconcileTimeouts(ctx context.Context, sessionID string, now time.Time) (Outcome, error) {
	var lastOutcome Outcome
	anyChanged := false
	changed := true
	for changed {
		changed = false
		tasks, err := s.store.GetTasks(ctx, sessionID)
		if err != nil {
			return Outcome{}, fmt.Errorf("scheduler: reconcile timeouts: %w", err)
		}
		for _, t := range tasks {
			if t.IsTerminal() || !t.EndTime.Before(now) {
				continue
			}
			outcome, err := s.Timeout(ctx, sessionID, t.TaskID, now)
			if err != nil {
				return Outcome{}, fmt.Errorf("scheduler: reconcile timeouts: %w", err)
			}
			prior := lastOutcome.UpdatedProperties
			lastOutcome = outcome
			lastOutcome.UpdatedProperties = append(prior, outcome.UpdatedProperties...)
			changed = true
			anyChanged = true
			break // task list mutated; restart the scan from a fresh read
		}
	}
	if lastOutcome.Tasks == nil {
		tasks, err := s.store.GetTasks(ctx, sessionID)
		if err != nil {
			return Outcome{}, fmt.Errorf("scheduler: reconcile timeouts: %w", err)
		}
		lastOutcome = Outcome{Tasks: tasks}
	}
	lastOutcome.Changed = anyChanged
	return lastOutcome, nil
}
