package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/models"
)

func TestMaterializeTasks_ContiguousOrdered(t *testing.T) {
	tasks := config.TasksSection{
		Timer: 60,
		List: []config.TaskConfig{
			{TaskID: "t0", Description: "first"},
			{TaskID: "t1", Description: "second", Timer: 30},
		},
	}
	ordered := true
	tasks.Ordered = &ordered

	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	out := materializeTasks("s1", tasks, start)

	require.Len(t, out, 2)
	assert.Equal(t, 0, out[0].TaskOrder)
	assert.Equal(t, start, out[0].StartTime)
	assert.Equal(t, start.Add(60*time.Second), out[0].EndTime)
	assert.Equal(t, out[0].EndTime, out[1].StartTime)
	assert.Equal(t, out[0].EndTime.Add(30*time.Second), out[1].EndTime)
}

func TestMaterializeDevices_CopiesInteractions(t *testing.T) {
	devices := []config.DeviceConfig{
		{DeviceID: "oven", Interactions: []config.InteractionConfig{
			{Name: "on", Type: models.InteractionBoolean, Value: false},
		}},
	}
	out := materializeDevices("s1", devices)
	require.Len(t, out, 1)
	assert.Equal(t, "oven", out[0].DeviceID)
	assert.Equal(t, "on", out[0].Interactions[0].Name)
	assert.Equal(t, false, out[0].Interactions[0].Value)
}

func TestApplyDefaultProperties_OverwritesExisting(t *testing.T) {
	devices := []models.Device{
		{DeviceID: "oven", Interactions: []models.Interaction{{Name: "on", Value: false}}},
	}
	game := &config.Game{
		Tasks: config.TasksSection{
			List: []config.TaskConfig{
				{
					TaskID: "t0",
					DefaultDeviceProperties: []config.DefaultDeviceProperty{
						{Device: "oven", Interaction: "on", Value: true},
					},
				},
			},
		},
	}
	applyDefaultProperties(devices, "t0", game)
	assert.Equal(t, true, devices[0].Interactions[0].Value)
}

func TestApplyDefaultProperties_AddsMissingInteraction(t *testing.T) {
	devices := []models.Device{{DeviceID: "oven"}}
	game := &config.Game{
		Tasks: config.TasksSection{
			List: []config.TaskConfig{
				{
					TaskID: "t0",
					DefaultDeviceProperties: []config.DefaultDeviceProperty{
						{Device: "oven", Interaction: "light", Value: true},
					},
				},
			},
		},
	}
	applyDefaultProperties(devices, "t0", game)
	require.Len(t, devices[0].Interactions, 1)
	assert.Equal(t, "light", devices[0].Interactions[0].Name)
}

func TestExecutor_SerializesSubmissions(t *testing.T) {
	e := newExecutor()
	defer e.Close()

	var order []int
	var mu sync.Mutex
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		i := i
		e.Submit(ctx, func(context.Context) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}
