package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGame_Valid(t *testing.T) {
	path := writeTemp(t, "game.yaml", `
environment:
  time:
    startTime: "07:30"
    speed: 60
rooms:
  - id: kitchen
    walls:
      - id: north
        devices:
          - deviceId: oven
            interactions:
              - name: on
                type: Boolean
                value: false
tasks:
  ordered: true
  timer: 120
  list:
    - taskId: make-coffee
      description: Make coffee
      goals:
        - kind: Device
          device: oven
          name: on
          operator: "=="
          value: true
rules:
  - id: oven-overheat
    preconditions:
      - kind: Device
        device: oven
        name: on
        operator: "=="
        value: true
    actions:
      - kind: Explanation
        explanation_key: oven_on
`)

	g, err := LoadGame(path)
	require.NoError(t, err)
	assert.True(t, g.Tasks.IsOrdered())
	task, ok := g.TaskByID("make-coffee")
	require.True(t, ok)
	assert.Equal(t, "Make coffee", task.Description)
	assert.Equal(t, float64(120), task.EffectiveTimer(g.Tasks.Timer))
}

func TestLoadGame_DanglingDeviceReference(t *testing.T) {
	path := writeTemp(t, "game.yaml", `
rooms:
  - id: kitchen
    walls:
      - id: north
        devices:
          - deviceId: oven
tasks:
  list:
    - taskId: t1
      goals:
        - kind: Device
          device: fridge
          name: on
          operator: "=="
          value: true
`)

	_, err := LoadGame(path)
	assert.ErrorContains(t, err, "unknown device")
}

func TestLoadGame_DuplicateTaskID(t *testing.T) {
	path := writeTemp(t, "game.yaml", `
tasks:
  list:
    - taskId: t1
    - taskId: t1
`)
	_, err := LoadGame(path)
	assert.ErrorContains(t, err, "duplicate taskId")
}

func TestTasksSection_Defaults(t *testing.T) {
	var ts TasksSection
	assert.True(t, ts.IsOrdered())
	assert.True(t, ts.GlobalAbortable())
}

func TestLoadExplanation_ExternalRequiresURL(t *testing.T) {
	path := writeTemp(t, "explanation.yaml", `
mode: external
transport: rest
`)
	_, err := LoadExplanation(path)
	assert.ErrorContains(t, err, "engineUrl")
}

func TestLoadExplanation_Integrated(t *testing.T) {
	path := writeTemp(t, "explanation.yaml", `
mode: integrated
trigger: automatic
allowUserMessage: true
cannedText:
  oven_on: "The oven was switched on to preheat before the task began."
`)
	e, err := LoadExplanation(path)
	require.NoError(t, err)
	assert.Equal(t, TriggerAutomatic, e.Trigger)
	assert.True(t, e.AllowUserMessage)
}
