package rules

import (
	"fmt"

	"github.com/shine-lab/orchestration-core/internal/models"
)

// Snapshot is the evaluation context for one round: device state plus the
// in-game clock plus any stateless-action values injected for this round
// only (§4.5 — stateless actions are never persisted, so they exist solely
// as Snapshot.StatelessValues during the round that produced them).
type Snapshot struct {
	Devices          map[string]*models.Device
	ClockHour        int
	ClockMinute      int
	StatelessValues  map[string]interface{} // keyed "device/interaction"
}

func statelessKey(device, interaction string) string {
	return device + "/" + interaction
}

// WithStateless returns a copy of the snapshot with one stateless-action
// value injected, leaving the underlying device map untouched.
func (s Snapshot) WithStateless(device, interaction string, value interface{}) Snapshot {
	out := s
	out.StatelessValues = map[string]interface{}{}
	for k, v := range s.StatelessValues {
		out.StatelessValues[k] = v
	}
	out.StatelessValues[statelessKey(device, interaction)] = value
	return out
}

// EvaluateAtom reports whether one precondition/goal atom holds against the
// snapshot.
func EvaluateAtom(atom models.Atom, snap Snapshot) (bool, error) {
	switch atom.Kind {
	case models.AtomDevice:
		return evaluateDeviceAtom(atom, snap)
	case models.AtomTime:
		return evaluateTimeAtom(atom, snap)
	case models.AtomContext:
		return evaluateContextAtom(atom, snap)
	default:
		return false, fmt.Errorf("rules: unknown atom kind %q", atom.Kind)
	}
}

func evaluateDeviceAtom(atom models.Atom, snap Snapshot) (bool, error) {
	if v, ok := snap.StatelessValues[statelessKey(atom.Device, atom.Name)]; ok {
		return compare(v, atom.Operator, atom.Value)
	}
	dev, ok := snap.Devices[atom.Device]
	if !ok {
		return false, fmt.Errorf("rules: unknown device %q", atom.Device)
	}
	interaction := dev.Find(atom.Name)
	if interaction == nil {
		return false, fmt.Errorf("rules: device %q has no interaction %q", atom.Device, atom.Name)
	}
	return compare(interaction.Value, atom.Operator, atom.Value)
}

func evaluateTimeAtom(atom models.Atom, snap Snapshot) (bool, error) {
	current := ClockString(snap.ClockHour, snap.ClockMinute)
	return compare(current, atom.Operator, atom.Value)
}

// evaluateContextAtom evaluates a Context atom, which names a session-level
// value rather than a device interaction (a custom_data attribute, or
// "task" for the current task id). Context atoms are resolved by the caller
// populating StatelessValues under the bare name (no device qualifier)
// before evaluation; an absent name evaluates false.
func evaluateContextAtom(atom models.Atom, snap Snapshot) (bool, error) {
	v, ok := snap.StatelessValues[statelessKey("", atom.Name)]
	if !ok {
		return false, nil
	}
	return compare(v, atom.Operator, atom.Value)
}

// EvaluateAll evaluates a conjunction of atoms, short-circuiting on the
// first false or erroring atom.
func EvaluateAll(atoms []models.Atom, snap Snapshot) (bool, error) {
	for _, atom := range atoms {
		ok, err := EvaluateAtom(atom, snap)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func compare(actual interface{}, op models.Operator, expected interface{}) (bool, error) {
	switch op {
	case models.OpEqual:
		return looseEqual(actual, expected), nil
	case models.OpNotEqual:
		return !looseEqual(actual, expected), nil
	case models.OpLessThan, models.OpGreaterThan, models.OpLessEqual, models.OpGreaterEqual:
		af, aok := toFloat(actual)
		ef, eok := toFloat(expected)
		if !aok || !eok {
			as, aok2 := actual.(string)
			es, eok2 := expected.(string)
			if aok2 && eok2 {
				return compareStrings(as, op, es), nil
			}
			return false, fmt.Errorf("rules: cannot compare %v %s %v", actual, op, expected)
		}
		return compareFloats(af, op, ef), nil
	default:
		return false, fmt.Errorf("rules: unknown operator %q", op)
	}
}

func compareFloats(a float64, op models.Operator, b float64) bool {
	switch op {
	case models.OpLessThan:
		return a < b
	case models.OpGreaterThan:
		return a > b
	case models.OpLessEqual:
		return a <= b
	case models.OpGreaterEqual:
		return a >= b
	}
	return false
}

func compareStrings(a string, op models.Operator, b string) bool {
	switch op {
	case models.OpLessThan:
		return a < b
	case models.OpGreaterThan:
		return a > b
	case models.OpLessEqual:
		return a <= b
	case models.OpGreaterEqual:
		return a >= b
	}
	return false
}

func looseEqual(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
