package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/shine-lab/orchestration-core/internal/models"
)

var validate = validator.New()

// LoadGame reads and validates game.yaml from path, following the teacher's
// load-then-validate-then-cross-check shape used for its own config
// surfaces (decode into a typed struct, run struct-tag validation, then run
// bespoke semantic checks that a tag alone can't express).
func LoadGame(path string) (*Game, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read game config: %w", err)
	}
	var g Game
	if err := yaml.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("config: parse game config: %w", err)
	}
	if err := validateGame(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

// LoadExplanation reads and validates explanation.yaml from path.
func LoadExplanation(path string) (*Explanation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read explanation config: %w", err)
	}
	var e Explanation
	if err := yaml.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("config: parse explanation config: %w", err)
	}
	if err := validateExplanation(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

func validateExplanation(e *Explanation) error {
	switch e.Mode {
	case EngineIntegrated, EngineNone:
	case EngineExternal:
		if e.EngineURL == "" {
			return fmt.Errorf("config: explanation.engineUrl required when mode is external")
		}
		switch e.Transport {
		case TransportREST, TransportWebSocket:
		default:
			return fmt.Errorf("config: explanation.transport must be rest or websocket when mode is external, got %q", e.Transport)
		}
	default:
		return fmt.Errorf("config: explanation.mode must be one of integrated|external|none, got %q", e.Mode)
	}
	switch e.Trigger {
	case TriggerAutomatic, TriggerOnDemand, "":
	default:
		return fmt.Errorf("config: explanation.trigger must be automatic or on_demand, got %q", e.Trigger)
	}
	return nil
}

// validateGame runs struct-tag validation plus the dangling-device-reference
// check: every device named by a task goal, default property, or rule
// precondition/action must resolve to a device declared under rooms.
func validateGame(g *Game) error {
	deviceIDs := map[string]bool{}
	for _, room := range g.Rooms {
		for _, wall := range room.Walls {
			for _, dev := range wall.Devices {
				if err := validate.Struct(dev); err != nil {
					return fmt.Errorf("config: invalid device %q: %w", dev.DeviceID, err)
				}
				deviceIDs[dev.DeviceID] = true
			}
		}
	}

	taskIDs := map[string]bool{}
	for _, task := range g.Tasks.List {
		if taskIDs[task.TaskID] {
			return fmt.Errorf("config: duplicate taskId %q", task.TaskID)
		}
		taskIDs[task.TaskID] = true

		for _, goal := range task.Goals {
			if err := checkAtomDeviceRef(goal, deviceIDs); err != nil {
				return fmt.Errorf("config: task %q goal: %w", task.TaskID, err)
			}
		}
		for _, dp := range task.DefaultDeviceProperties {
			if !deviceIDs[dp.Device] {
				return fmt.Errorf("config: task %q defaultDeviceProperties references unknown device %q", task.TaskID, dp.Device)
			}
		}
	}

	for _, rule := range g.Rules {
		for _, atom := range rule.Preconditions {
			if err := checkAtomDeviceRef(atom, deviceIDs); err != nil {
				return fmt.Errorf("config: rule %q precondition: %w", rule.ID, err)
			}
		}
		for _, action := range rule.Actions {
			if action.Kind == models.ActionDeviceInteraction && !deviceIDs[action.Device] {
				return fmt.Errorf("config: rule %q action references unknown device %q", rule.ID, action.Device)
			}
		}
	}

	return nil
}

func checkAtomDeviceRef(atom models.Atom, deviceIDs map[string]bool) error {
	if atom.Kind == models.AtomDevice && !deviceIDs[atom.Device] {
		return fmt.Errorf("references unknown device %q", atom.Device)
	}
	return nil
}

// TaskByID finds a configured task, in declaration order.
func (g *Game) TaskByID(id string) (*TaskConfig, bool) {
	for i := range g.Tasks.List {
		if g.Tasks.List[i].TaskID == id {
			return &g.Tasks.List[i], true
		}
	}
	return nil, false
}

// DeviceByID finds a configured device across all rooms/walls, in
// declaration order.
func (g *Game) DeviceByID(id string) (*DeviceConfig, bool) {
	for _, room := range g.Rooms {
		for _, wall := range room.Walls {
			for i := range wall.Devices {
				if wall.Devices[i].DeviceID == id {
					return &wall.Devices[i], true
				}
			}
		}
	}
	return nil, false
}

// AllDevices flattens rooms/walls into a single ordered device-config list.
func (g *Game) AllDevices() []DeviceConfig {
	var out []DeviceConfig
	for _, room := range g.Rooms {
		for _, wall := range room.Walls {
			out = append(out, wall.Devices...)
		}
	}
	return out
}

// RulesInOrder returns the configured rules in declaration order — the
// order in which rule evaluation fires every rule whose preconditions hold.
func (g *Game) RulesInOrder() []RuleConfig {
	return g.Rules
}
