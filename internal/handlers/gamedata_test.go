package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/models"
)

func TestGetGameData_MissingSessionID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &GameDataHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/game-data", nil)

	h.GetGameData(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func testGame() *config.Game {
	return &config.Game{
		Environment: config.Environment{
			Time: config.TimeConfig{StartTime: config.ClockTime{Hour: 8, Minute: 30}, Speed: 2.0},
		},
		Rooms: []config.Room{
			{
				ID: "kitchen",
				Walls: []config.Wall{
					{
						ID: "north",
						Devices: []config.DeviceConfig{
							{
								DeviceID: "thermostat",
								Interactions: []config.InteractionConfig{
									{Name: "power", Type: models.InteractionGeneric, Value: "off"},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestBuildGameConfig_OverlaysLiveDeviceState(t *testing.T) {
	h := &GameDataHandler{game: testGame()}

	live := []models.Device{
		{
			DeviceID: "thermostat",
			Interactions: []models.Interaction{
				{Name: "power", Type: models.InteractionGeneric, Value: "on"},
			},
		},
	}

	resp := h.buildGameConfig(live, time.Unix(1000, 0))

	assert.Equal(t, "08:30", resp.Environment.Time.StartTime)
	assert.Equal(t, 2.0, resp.Environment.Time.Speed)
	assert.Len(t, resp.Rooms, 1)
	assert.Equal(t, "kitchen", resp.Rooms[0].ID)
	devs := resp.Rooms[0].Walls[0].Devices
	assert.Equal(t, "thermostat", devs[0].DeviceID)
	assert.Equal(t, "on", devs[0].Interactions[0].CurrentState.Value)
}

func TestBuildGameConfig_FallsBackToConfiguredValueWhenNoLiveDevice(t *testing.T) {
	h := &GameDataHandler{game: testGame()}

	resp := h.buildGameConfig(nil, time.Unix(0, 0))

	devs := resp.Rooms[0].Walls[0].Devices
	assert.Equal(t, "off", devs[0].Interactions[0].CurrentState.Value)
}

func TestBuildTaskViews_ResolvesAbortableFromConfig(t *testing.T) {
	abortableFalse := false
	game := &config.Game{
		Tasks: config.TasksSection{
			Abortable: nil, // global default true
			List: []config.TaskConfig{
				{TaskID: "task-1", AbortionOptions: []string{"skip"}, Abortable: &abortableFalse},
			},
		},
	}
	h := &GameDataHandler{game: game}

	tasks := []models.Task{
		{TaskID: "task-1", Description: "do a thing", IsCompleted: true},
		{TaskID: "unknown-task", Description: "untracked"},
	}

	views := h.buildTaskViews(tasks)

	assert.Len(t, views, 2)
	assert.Equal(t, "task-1", views[0].TaskID)
	assert.True(t, views[0].IsCompleted)
	assert.Equal(t, []string{"skip"}, views[0].AbortionOptions)
	assert.False(t, views[0].Abortable) // task overrides the global default to false

	assert.Equal(t, "unknown-task", views[1].TaskID)
	assert.True(t, views[1].Abortable) // no config match, falls back to the global default
}
