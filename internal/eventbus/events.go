package eventbus

// Inbound event type names (client → server), exactly the set in §4.7.
const (
	EventGameStart          = "game-start"
	EventDeviceInteraction  = "device-interaction"
	EventGameInteraction    = "game-interaction"
	EventTaskTimeout         = "task-timeout"
	EventTaskAbort           = "task-abort"
	EventExplanationRequest  = "explanation_request"
	EventExplanationRating   = "explanation_rating"
)

// Outbound event type names (server → client).
const (
	PushUpdateInteraction = "update-interaction"
	PushExplanation       = "explanation"
	PushGameUpdate        = "game-update"
)

// InboundFrame is the generic envelope every inbound event is decoded into
// before dispatch on Type.
type InboundFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// DeviceInteractionPayload is device-interaction's payload.
type DeviceInteractionPayload struct {
	SessionID   string      `json:"session_id"`
	Device      string      `json:"device"`
	Interaction string      `json:"interaction"`
	Value       interface{} `json:"value"`
}

// GameInteractionPayload is game-interaction's payload.
type GameInteractionPayload struct {
	SessionID string      `json:"session_id"`
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
}

// TaskTimeoutPayload is task-timeout's payload.
type TaskTimeoutPayload struct {
	SessionID string `json:"session_id"`
	TaskID    string `json:"task_id"`
}

// TaskAbortPayload is task-abort's payload.
type TaskAbortPayload struct {
	SessionID   string `json:"session_id"`
	TaskID      string `json:"task_id"`
	AbortOption string `json:"abortOption"`
}

// ExplanationRequestPayload is explanation_request's payload.
type ExplanationRequestPayload struct {
	SessionID   string  `json:"session_id"`
	UserMessage *string `json:"userMessage,omitempty"`
}

// ExplanationRatingPayload is explanation_rating's payload.
type ExplanationRatingPayload struct {
	SessionID     string `json:"session_id"`
	ExplanationID string `json:"explanation_id"`
	Rating        int    `json:"rating"`
}

// UpdateInteractionPush is update-interaction's payload.
type UpdateInteractionPush struct {
	DeviceID    string      `json:"device_id"`
	Interaction string      `json:"interaction"`
	Value       interface{} `json:"value"`
}

// ExplanationPush is explanation's payload.
type ExplanationPush struct {
	Explanation   string `json:"explanation"`
	ExplanationID string `json:"explanation_id,omitempty"`
	Rating        *int   `json:"rating,omitempty"`
}

// GameUpdatePush is game-update's payload.
type GameUpdatePush struct {
	UpdatedTasks      []TaskView             `json:"updatedTasks"`
	UpdatedProperties []DevicePropertyUpdate `json:"updatedProperties"`
	Message           string                 `json:"message,omitempty"`
}

// TaskView is one task enriched with config-derived fields for §4.7's
// updatedTasks shape.
type TaskView struct {
	TaskID          string                   `json:"task_id"`
	Description     string                   `json:"description"`
	IsCompleted     bool                     `json:"is_completed"`
	IsAborted       bool                     `json:"is_aborted"`
	IsTimedOut      bool                     `json:"is_timed_out"`
	AbortionOptions []string                 `json:"abortionOptions"`
	Abortable       bool                     `json:"abortable"`
	Environment     []map[string]interface{} `json:"environment"`
}

// DevicePropertyUpdate is one entry of updatedProperties.
type DevicePropertyUpdate struct {
	Device      string      `json:"device"`
	Interaction string      `json:"interaction"`
	Value       interface{} `json:"value"`
}
