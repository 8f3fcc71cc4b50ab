// Package models defines the persistent data types of the study orchestration core:
// sessions, tasks, devices, rules, log entries and explanations.
package models

import "time"

// CustomData is the set of participant attributes injected from an upstream survey,
// e.g. {"age": 34, "condition": "A"}. Values are JSON primitives.
type CustomData map[string]interface{}

// Session is one participant-run. Owns its Tasks, Devices, Logs and Explanations
// exclusively, keyed by SessionID.
type Session struct {
	SessionID        string     `json:"session_id" db:"session_id"`
	StartTime        time.Time  `json:"start_time" db:"start_time"`
	LastActivity     time.Time  `json:"last_activity" db:"last_activity"`
	IsCompleted      bool       `json:"is_completed" db:"is_completed"`
	CompletionTime   *time.Time `json:"completion_time,omitempty" db:"completion_time"`
	CustomData       CustomData `json:"custom_data" db:"custom_data"`
	ExplanationCache *string    `json:"explanation_cache,omitempty" db:"explanation_cache"`
	SocketID         *string    `json:"socket_id,omitempty" db:"socket_id"`
	UserAgent        string     `json:"user_agent,omitempty" db:"user_agent"`
	ScreenSize       string     `json:"screen_size,omitempty" db:"screen_size"`
}

// AbortableOverride resolves the source's ambiguous abortable tri-state:
// override-true, override-false, or inherit from the global tasks.abortable default.
type AbortableOverride int

const (
	AbortableInherit AbortableOverride = iota
	AbortableOverrideTrue
	AbortableOverrideFalse
)

// Resolve returns the effective abortable flag given the global default.
func (a AbortableOverride) Resolve(globalDefault bool) bool {
	switch a {
	case AbortableOverrideTrue:
		return true
	case AbortableOverrideFalse:
		return false
	default:
		return globalDefault
	}
}

// Task is one (session, configured-task) pairing. Exactly one of
// {IsCompleted, IsAborted, IsTimedOut} may be true, and once true stays true.
type Task struct {
	SessionID        string     `json:"-" db:"session_id"`
	TaskID           string     `json:"task_id" db:"task_id"`
	TaskOrder        int        `json:"task_order" db:"task_order"`
	Description      string     `json:"description" db:"description"`
	StartTime        time.Time  `json:"start_time" db:"start_time"`
	EndTime          time.Time  `json:"end_time" db:"end_time"`
	IsCompleted      bool       `json:"is_completed" db:"is_completed"`
	IsAborted        bool       `json:"is_aborted" db:"is_aborted"`
	IsTimedOut       bool       `json:"is_timed_out" db:"is_timed_out"`
	CompletionTime   *time.Time `json:"completion_time,omitempty" db:"completion_time"`
	AbortedReason    string     `json:"aborted_reason,omitempty" db:"aborted_reason"`
	DurationSeconds  *float64   `json:"duration,omitempty" db:"duration_seconds"`
	InteractionTimes int        `json:"interaction_times" db:"interaction_times"`

	// AbortOverride is config-derived, not persisted per instance;
	// populated by the Session Manager at materialization time for response enrichment.
	AbortOverride AbortableOverride `json:"-"`
}

// IsTerminal reports whether the task has reached any final state.
func (t *Task) IsTerminal() bool {
	return t.IsCompleted || t.IsAborted || t.IsTimedOut
}

// IsCurrent reports whether now falls within [StartTime, EndTime] and the task
// has not yet terminated — the definition of "current task" in the core.
func (t *Task) IsCurrent(now time.Time) bool {
	if t.IsTerminal() {
		return false
	}
	return !now.Before(t.StartTime) && !now.After(t.EndTime)
}

// InteractionType enumerates the kinds of device interaction values.
type InteractionType string

const (
	InteractionBoolean         InteractionType = "Boolean"
	InteractionNumerical       InteractionType = "Numerical"
	InteractionGeneric         InteractionType = "Generic"
	InteractionDynamicProperty InteractionType = "DynamicProperty"
	InteractionStatelessAction InteractionType = "StatelessAction"
)

// Interaction is a named, typed value on a device. For StatelessAction, Value
// carries no persistent meaning: the raw store never retains it (§4.5).
type Interaction struct {
	Name  string          `json:"name"`
	Type  InteractionType `json:"type"`
	Value interface{}     `json:"value"`
}

// Device is one (session, configured-device) pairing: an ordered sequence of
// Interactions. Mutations serialize per (session, device).
type Device struct {
	SessionID    string        `json:"-" db:"session_id"`
	DeviceID     string        `json:"device_id" db:"device_id"`
	Interactions []Interaction `json:"interactions" db:"interactions"`
}

// Find returns a pointer to the named interaction, or nil.
func (d *Device) Find(name string) *Interaction {
	for i := range d.Interactions {
		if d.Interactions[i].Name == name {
			return &d.Interactions[i]
		}
	}
	return nil
}

// Explanation is a produced rationale, either from the integrated canned-text
// table or from an external engine response.
type Explanation struct {
	ExplanationID   string    `json:"explanation_id" db:"explanation_id"`
	SessionID       string    `json:"user_session_id" db:"session_id"`
	TaskID          string    `json:"task_id" db:"task_id"`
	Explanation     string    `json:"explanation" db:"explanation"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	DelaySeconds    float64   `json:"delay,omitempty" db:"delay_seconds"`
	Rating          *int      `json:"rating,omitempty" db:"rating"`
}
