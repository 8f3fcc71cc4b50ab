package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/models"
)

func TestInGameTime_Basic(t *testing.T) {
	cfg := config.TimeConfig{StartTime: config.ClockTime{Hour: 7, Minute: 30}, Speed: 60}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.Add(2 * time.Minute) // 120s wall * 60 speed = 7200s = 2h in-game
	hour, minute := InGameTime(cfg, start, now)
	assert.Equal(t, 9, hour)
	assert.Equal(t, 30, minute)
}

func TestInGameTime_WrapsPastMidnight(t *testing.T) {
	cfg := config.TimeConfig{StartTime: config.ClockTime{Hour: 23, Minute: 0}, Speed: 3600}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.Add(1 * time.Second) // 3600s in-game = 1h, wraps to 00:00
	hour, minute := InGameTime(cfg, start, now)
	assert.Equal(t, 0, hour)
	assert.Equal(t, 0, minute)
}

func newSnap() Snapshot {
	return Snapshot{
		Devices: map[string]*models.Device{
			"oven": {
				DeviceID: "oven",
				Interactions: []models.Interaction{
					{Name: "on", Type: models.InteractionBoolean, Value: true},
					{Name: "temperature", Type: models.InteractionNumerical, Value: float64(180)},
				},
			},
		},
		ClockHour:   9,
		ClockMinute: 30,
	}
}

func TestEvaluateAtom_Device(t *testing.T) {
	snap := newSnap()
	ok, err := EvaluateAtom(models.Atom{Kind: models.AtomDevice, Device: "oven", Name: "on", Operator: models.OpEqual, Value: true}, snap)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvaluateAtom(models.Atom{Kind: models.AtomDevice, Device: "oven", Name: "temperature", Operator: models.OpGreaterThan, Value: float64(100)}, snap)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateAtom_Time(t *testing.T) {
	snap := newSnap()
	ok, err := EvaluateAtom(models.Atom{Kind: models.AtomTime, Operator: models.OpGreaterEqual, Value: "09:00"}, snap)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateAtom_UnknownDevice(t *testing.T) {
	snap := newSnap()
	_, err := EvaluateAtom(models.Atom{Kind: models.AtomDevice, Device: "fridge", Name: "on", Operator: models.OpEqual, Value: true}, snap)
	assert.Error(t, err)
}

func TestEvaluate_FiresRuleAndBuildsOutcome(t *testing.T) {
	snap := newSnap()
	rule := config.RuleConfig{
		ID: "oven-hot",
		Preconditions: []models.Atom{
			{Kind: models.AtomDevice, Device: "oven", Name: "on", Operator: models.OpEqual, Value: true},
		},
		Actions: []models.Action{
			{Kind: models.ActionDeviceInteraction, Device: "oven", Interaction: "light", Value: true},
			{Kind: models.ActionExplanation, ExplanationKey: "oven_on"},
		},
		DelaySeconds: 5,
	}

	fired := Evaluate([]config.RuleConfig{rule}, snap)
	require.Len(t, fired, 1)
	require.Len(t, fired[0].DeviceOutcomes, 1)
	assert.Equal(t, "light", fired[0].DeviceOutcomes[0].Interaction)
	assert.Equal(t, float64(5), fired[0].DeviceOutcomes[0].DelaySecond)
	assert.Equal(t, []string{"oven_on"}, fired[0].ExplanationKeys)
}

func TestEvaluate_SkipsNonMatchingRule(t *testing.T) {
	snap := newSnap()
	rule := config.RuleConfig{
		ID: "fridge-open",
		Preconditions: []models.Atom{
			{Kind: models.AtomDevice, Device: "oven", Name: "on", Operator: models.OpEqual, Value: false},
		},
	}
	fired := Evaluate([]config.RuleConfig{rule}, snap)
	assert.Empty(t, fired)
}

func TestCheckGoals(t *testing.T) {
	snap := newSnap()
	ok, err := CheckGoals([]models.Atom{
		{Kind: models.AtomDevice, Device: "oven", Name: "on", Operator: models.OpEqual, Value: true},
	}, snap)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSnapshot_WithStateless(t *testing.T) {
	snap := newSnap()
	augmented := snap.WithStateless("oven", "button_press", true)
	ok, err := EvaluateAtom(models.Atom{Kind: models.AtomDevice, Device: "oven", Name: "button_press", Operator: models.OpEqual, Value: true}, augmented)
	require.NoError(t, err)
	assert.True(t, ok)

	// original snapshot is untouched
	assert.Nil(t, snap.StatelessValues)
}
