package models

// LogType enumerates the structured event-log entry kinds. Any other string
// is accepted as a pass-through game-interaction type (§3).
type LogType string

const (
	LogTaskBegin         LogType = "TASK_BEGIN"
	LogTaskCompleted     LogType = "TASK_COMPLETED"
	LogTaskTimeout       LogType = "TASK_TIMEOUT"
	LogAbortTask         LogType = "ABORT_TASK"
	LogDeviceInteraction LogType = "DEVICE_INTERACTION"
	LogRuleTrigger       LogType = "RULE_TRIGGER"
)

// LogEntry is one append-only record in a session's structured event log.
type LogEntry struct {
	ID               int64                  `json:"-" db:"id"`
	SessionID        string                 `json:"user_session_id" db:"session_id"`
	Type             string                 `json:"type" db:"type"`
	Metadata         map[string]interface{} `json:"metadata" db:"metadata"`
	TimestampSeconds float64                `json:"timestamp_seconds" db:"timestamp_seconds"`
}
