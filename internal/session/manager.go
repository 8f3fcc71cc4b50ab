// Package session implements the Session Manager of §4.2: session
// lifecycle (create/verify/complete) and materialization of a session's
// tasks and devices from the static config, plus per-session mutation
// serialization (§4.4, §5).
package session

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/shine-lab/orchestration-core/internal/apperr"
	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/models"
	"github.com/shine-lab/orchestration-core/internal/store"
)

// Manager creates, verifies and finalizes sessions, and owns the
// per-session Executor registry used to serialize every subsequent
// mutation (§5).
type Manager struct {
	store     *store.Store
	game      *config.Game
	executors *executorRegistry
}

// New builds a Manager over game (the immutable boot-time config) and st.
func New(st *store.Store, game *config.Game) *Manager {
	return &Manager{
		store:     st,
		game:      game,
		executors: newExecutorRegistry(),
	}
}

// Create provisions a new session and materializes its tasks and devices,
// or fails with a Conflict error carrying the existing session's id if one
// non-completed session with this id already exists (§4.2).
func (m *Manager) Create(ctx context.Context, sessionID string, customData models.CustomData, userAgent, screenSize string) error {
	exists, err := m.store.ActiveSessionExists(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("session: create: %w", err)
	}
	if exists {
		return apperr.Conflict(sessionID)
	}

	now := time.Now()
	sess := &models.Session{
		SessionID:    sessionID,
		StartTime:    now,
		LastActivity: now,
		CustomData:   customData,
		UserAgent:    userAgent,
		ScreenSize:   screenSize,
	}
	if err := m.store.CreateSession(ctx, sess); err != nil {
		return fmt.Errorf("session: create: %w", err)
	}

	tasks := materializeTasks(sessionID, m.game.Tasks, now)
	if err := m.store.InsertTasks(ctx, tasks); err != nil {
		return fmt.Errorf("session: create: %w", err)
	}

	devices := materializeDevices(sessionID, m.game.AllDevices())
	if len(tasks) > 0 {
		applyDefaultProperties(devices, tasks[0].TaskID, m.game)
	}
	if err := m.store.InsertDevices(ctx, devices); err != nil {
		return fmt.Errorf("session: create: %w", err)
	}

	return nil
}

// materializeTasks builds the per-session task rows in declaration order,
// shuffling first when tasks.ordered is false (Open Question: the chain of
// end_times is computed after shuffling so times stay contiguous, §4.2).
func materializeTasks(sessionID string, tasks config.TasksSection, sessionStart time.Time) []models.Task {
	configs := make([]config.TaskConfig, len(tasks.List))
	copy(configs, tasks.List)

	if !tasks.IsOrdered() {
		rand.Shuffle(len(configs), func(i, j int) {
			configs[i], configs[j] = configs[j], configs[i]
		})
	}

	out := make([]models.Task, 0, len(configs))
	cursor := sessionStart
	for i, tc := range configs {
		duration := time.Duration(tc.EffectiveTimer(tasks.Timer) * float64(time.Second))
		end := cursor.Add(duration)
		out = append(out, models.Task{
			SessionID:     sessionID,
			TaskID:        tc.TaskID,
			TaskOrder:     i,
			Description:   tc.Description,
			StartTime:     cursor,
			EndTime:       end,
			AbortOverride: tc.AbortOverride(),
		})
		cursor = end
	}
	return out
}

func materializeDevices(sessionID string, devices []config.DeviceConfig) []models.Device {
	out := make([]models.Device, 0, len(devices))
	for _, dc := range devices {
		d := models.Device{SessionID: sessionID, DeviceID: dc.DeviceID}
		for _, ic := range dc.Interactions {
			d.Interactions = append(d.Interactions, models.Interaction{Name: ic.Name, Type: ic.Type, Value: ic.Value})
		}
		out = append(out, d)
	}
	return out
}

// applyDefaultProperties overwrites interaction values per the given
// task's defaultDeviceProperties, mutating devices in place.
func applyDefaultProperties(devices []models.Device, taskID string, game *config.Game) {
	tc, ok := game.TaskByID(taskID)
	if !ok {
		return
	}
	byID := make(map[string]*models.Device, len(devices))
	for i := range devices {
		byID[devices[i].DeviceID] = &devices[i]
	}
	for _, dp := range tc.DefaultDeviceProperties {
		dev, ok := byID[dp.Device]
		if !ok {
			continue
		}
		if interaction := dev.Find(dp.Interaction); interaction != nil {
			interaction.Value = dp.Value
		} else {
			dev.Interactions = append(dev.Interactions, models.Interaction{Name: dp.Interaction, Value: dp.Value})
		}
	}
}

// VerifyResult is POST /session/verify's outcome.
type VerifyResult struct {
	Valid     bool
	Completed bool
}

// Verify reports whether sessionID names an existing session and bumps its
// last_activity if so (§4.2).
func (m *Manager) Verify(ctx context.Context, sessionID string) (VerifyResult, error) {
	sess, err := m.store.GetSession(ctx, sessionID)
	if appErr, ok := apperr.As(err); ok && appErr.Kind == apperr.KindNotFound {
		return VerifyResult{}, nil
	}
	if err != nil {
		return VerifyResult{}, fmt.Errorf("session: verify: %w", err)
	}
	if !sess.IsCompleted {
		if err := m.store.TouchLastActivity(ctx, sessionID, time.Now()); err != nil {
			return VerifyResult{}, fmt.Errorf("session: verify: %w", err)
		}
	}
	return VerifyResult{Valid: true, Completed: sess.IsCompleted}, nil
}

// Complete finalizes a session. Idempotent calls after the first fail with
// NotFound (§4.2: "second call returns NOT_FOUND").
func (m *Manager) Complete(ctx context.Context, sessionID string) error {
	if err := m.store.CompleteSession(ctx, sessionID, time.Now()); err != nil {
		if apperr.IsPrecondition(err) {
			return apperr.NotFound("session not found or already completed")
		}
		return fmt.Errorf("session: complete: %w", err)
	}
	m.executors.remove(sessionID)
	return nil
}

// ExecutorFor returns (creating if necessary) the per-session serialization
// executor used by every subsequent mutation on sessionID (§5).
func (m *Manager) ExecutorFor(sessionID string) *Executor {
	return m.executors.get(sessionID)
}

// NewExplanationID mints an explanation record id.
func NewExplanationID() string {
	return uuid.NewString()
}
