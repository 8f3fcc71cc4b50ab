// Package config loads and validates the two boot-time documents (game,
// explanation) and exposes immutable lookups to the rest of the core.
package config

import "github.com/shine-lab/orchestration-core/internal/models"

// Game is the root of game.yaml: rooms of devices, a task list, and rules.
type Game struct {
	Environment Environment    `yaml:"environment"`
	Rooms       []Room         `yaml:"rooms"`
	Tasks       TasksSection   `yaml:"tasks"`
	Rules       []RuleConfig   `yaml:"rules"`
}

// Environment carries in-game clock parameters (§4.5).
type Environment struct {
	Time TimeConfig `yaml:"time"`
}

// TimeConfig is environment.time.{startTime,speed}.
type TimeConfig struct {
	StartTime ClockTime `yaml:"startTime"`
	Speed     float64   `yaml:"speed"`
}

// ClockTime is an hour/minute pair ("HH:MM" in YAML, parsed at load time).
type ClockTime struct {
	Hour   int
	Minute int
}

// Room groups walls of devices; the core only cares about the device tree,
// not the browser-side spatial layout, but rooms→walls→devices is the
// config's declared shape (§4.1) and is walked unchanged.
type Room struct {
	ID    string `yaml:"id"`
	Walls []Wall `yaml:"walls"`
}

type Wall struct {
	ID      string         `yaml:"id"`
	Devices []DeviceConfig `yaml:"devices"`
}

// DeviceConfig is one configured device and its initial interaction values.
type DeviceConfig struct {
	DeviceID     string                `yaml:"deviceId" validate:"required"`
	Interactions []InteractionConfig   `yaml:"interactions"`
}

type InteractionConfig struct {
	Name  string                 `yaml:"name"`
	Type  models.InteractionType `yaml:"type"`
	Value interface{}            `yaml:"value"`
}

// TasksSection is the top-level "tasks" key: the ordered flag and default
// per-task timer live here (Open Question: ordered — resolved as a
// top-level boolean, default true when absent).
type TasksSection struct {
	Ordered   *bool          `yaml:"ordered"`
	Timer     float64        `yaml:"timer"`
	Abortable *bool          `yaml:"abortable"`
	List      []TaskConfig   `yaml:"list"`
}

// IsOrdered resolves the Open Question default.
func (t TasksSection) IsOrdered() bool {
	if t.Ordered == nil {
		return true
	}
	return *t.Ordered
}

// GlobalAbortable resolves the global abortable default (default true).
func (t TasksSection) GlobalAbortable() bool {
	if t.Abortable == nil {
		return true
	}
	return *t.Abortable
}

// TaskConfig is one configured task.
type TaskConfig struct {
	TaskID                string                       `yaml:"taskId"`
	Description           string                       `yaml:"description"`
	Timer                 float64                      `yaml:"timer"`
	Goals                 []models.Atom                `yaml:"goals"`
	DefaultDeviceProperties []DefaultDeviceProperty     `yaml:"defaultDeviceProperties"`
	AbortionOptions       []string                     `yaml:"abortionOptions"`
	Abortable             *bool                        `yaml:"abortable"`
	Environment           []EnvironmentVariable        `yaml:"environment"`
}

// AbortOverride resolves this task's abortable tri-state (Open Question:
// abortable — resolved as an explicit Inherit/OverrideTrue/OverrideFalse enum).
func (t TaskConfig) AbortOverride() models.AbortableOverride {
	if t.Abortable == nil {
		return models.AbortableInherit
	}
	if *t.Abortable {
		return models.AbortableOverrideTrue
	}
	return models.AbortableOverrideFalse
}

// EffectiveTimer resolves a task's timer, falling back to the global default
// when zero or unset (B3).
func (t TaskConfig) EffectiveTimer(globalDefault float64) float64 {
	if t.Timer == 0 {
		return globalDefault
	}
	return t.Timer
}

// DefaultDeviceProperty overwrites one interaction value when a task begins.
type DefaultDeviceProperty struct {
	Device      string      `yaml:"device"`
	Interaction string      `yaml:"interaction"`
	Value       interface{} `yaml:"value"`
}

// EnvironmentVariable is a task-level display variable surfaced in
// updatedTasks[].environment (§4.7).
type EnvironmentVariable struct {
	Name  string      `yaml:"name"`
	Value interface{} `yaml:"value"`
}

// RuleConfig is one configured rule, parsed directly into the tagged-variant
// models.Rule shape (no intermediate untyped bag).
type RuleConfig struct {
	ID            string          `yaml:"id"`
	Preconditions []models.Atom   `yaml:"preconditions"`
	Actions       []models.Action `yaml:"actions"`
	DelaySeconds  float64         `yaml:"delay"`
}

// TriggerPolicy is the explanation delivery trigger (§4.7).
type TriggerPolicy string

const (
	TriggerAutomatic TriggerPolicy = "automatic"
	TriggerOnDemand  TriggerPolicy = "on_demand"
)

// EngineMode selects the explanation engine transport (§4.7, §9).
type EngineMode string

const (
	EngineIntegrated EngineMode = "integrated"
	EngineExternal   EngineMode = "external"
	EngineNone       EngineMode = "none"
)

// ExternalTransport distinguishes the two external engine transports.
type ExternalTransport string

const (
	TransportREST      ExternalTransport = "rest"
	TransportWebSocket ExternalTransport = "websocket"
)

// Explanation is the root of explanation.yaml.
type Explanation struct {
	Trigger          TriggerPolicy     `yaml:"trigger"`
	Mode             EngineMode        `yaml:"mode"`
	Transport        ExternalTransport `yaml:"transport"`
	RatingMode       string            `yaml:"ratingMode"`
	AllowUserMessage bool              `yaml:"allowUserMessage"`
	EngineURL        string            `yaml:"engineUrl"`
	CannedText       map[string]string `yaml:"cannedText"`

	// CallbackAPIKeyHash authenticates the external WebSocket engine's
	// inbound callback connection (transport == websocket); bcrypt hash of
	// the shared key, never the plaintext (§4.7, explainengine/callbackauth.go).
	CallbackAPIKeyHash string `yaml:"callbackApiKeyHash"`
}
