// Package eventlog appends structured log entries and builds the metadata
// snapshot handed to the explanation engine on each entry (§4.6). Append,
// snapshot and notify are kept as three explicit, separately failable
// steps: an explanation engine failure must never roll back the append.
package eventlog

import (
	"context"
	"fmt"

	"github.com/shine-lab/orchestration-core/internal/models"
	"github.com/shine-lab/orchestration-core/internal/store"
)

// Logger appends entries to a session's log collection and builds the
// snapshot the explanation engine needs.
type Logger struct {
	store *store.Store
}

// New builds a Logger backed by st.
func New(st *store.Store) *Logger {
	return &Logger{store: st}
}

// DeviceSnapshot is one device's interactions, as surfaced in a metadata
// snapshot and in the /game-data response.
type DeviceSnapshot struct {
	Device       string                 `json:"device"`
	Interactions []InteractionSnapshot  `json:"interactions"`
}

// InteractionSnapshot is one (name, value) pair without the config-only Type.
type InteractionSnapshot struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// EnvironmentVariable mirrors a session's custom_data entry for display.
type EnvironmentVariable struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Metadata is the snapshot notified to the explanation engine (§4.6). Logs
// or Log is populated depending on the engine's transport, never both.
type Metadata struct {
	UserID      string           `json:"user_id"`
	CurrentTask string           `json:"current_task,omitempty"`
	IngameTime  string           `json:"ingame_time"`
	Environment []EnvironmentVariable `json:"environment"`
	Devices     []DeviceSnapshot `json:"devices"`
	Logs        []models.LogEntry `json:"logs,omitempty"`
	Log         *models.LogEntry  `json:"log,omitempty"`
}

// Append persists one log entry and returns it with its assigned id. It
// does not build a snapshot or notify anything — callers needing the
// fan-out call BuildSnapshot afterward, honoring the append-then-snapshot-
// then-notify ordering (§4.6, Design Note "Logger fan-out").
func (l *Logger) Append(ctx context.Context, entry models.LogEntry) (models.LogEntry, error) {
	id, err := l.store.AppendLog(ctx, &entry)
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("eventlog: append: %w", err)
	}
	entry.ID = id
	return entry, nil
}

// SnapshotInput gathers everything BuildSnapshot needs that the store alone
// can't answer (current task id, in-game clock), so this package stays
// free of a circular dependency on the session/scheduler packages.
type SnapshotInput struct {
	SessionID   string
	CurrentTask string
	IngameHour  int
	IngameMinute int
	CustomData  models.CustomData
	Devices     []models.Device
}

// BuildSnapshot builds the REST-mode metadata snapshot: logs carries the
// full current log list, including the entry Append just wrote.
func (l *Logger) BuildSnapshot(ctx context.Context, in SnapshotInput) (Metadata, error) {
	logs, err := l.store.AllLogs(ctx, in.SessionID)
	if err != nil {
		return Metadata{}, fmt.Errorf("eventlog: build snapshot: %w", err)
	}
	return Metadata{
		UserID:      in.SessionID,
		CurrentTask: in.CurrentTask,
		IngameTime:  clockString(in.IngameHour, in.IngameMinute),
		Environment: environmentFrom(in.CustomData),
		Devices:     deviceSnapshots(in.Devices),
		Logs:        logs,
	}, nil
}

// BuildSnapshotScalarLog builds the WebSocket-mode metadata snapshot: log
// carries only the entry just appended, and the engine is expected to
// retain prior history itself.
func (l *Logger) BuildSnapshotScalarLog(in SnapshotInput, justAppended models.LogEntry) Metadata {
	return Metadata{
		UserID:      in.SessionID,
		CurrentTask: in.CurrentTask,
		IngameTime:  clockString(in.IngameHour, in.IngameMinute),
		Environment: environmentFrom(in.CustomData),
		Devices:     deviceSnapshots(in.Devices),
		Log:         &justAppended,
	}
}

func environmentFrom(data models.CustomData) []EnvironmentVariable {
	out := make([]EnvironmentVariable, 0, len(data))
	for name, value := range data {
		out = append(out, EnvironmentVariable{Name: name, Value: value})
	}
	return out
}

func deviceSnapshots(devices []models.Device) []DeviceSnapshot {
	out := make([]DeviceSnapshot, 0, len(devices))
	for _, d := range devices {
		snap := DeviceSnapshot{Device: d.DeviceID}
		for _, i := range d.Interactions {
			snap.Interactions = append(snap.Interactions, InteractionSnapshot{Name: i.Name, Value: i.Value})
		}
		out = append(out, snap)
	}
	return out
}

func clockString(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ListLogs exposes filtered/paginated log listing for any future audit
// surface, mirroring store's options type.
func (l *Logger) ListLogs(ctx context.Context, sessionID string, opts store.LogListOptions) ([]models.LogEntry, error) {
	return l.store.ListLogs(ctx, sessionID, opts)
}
