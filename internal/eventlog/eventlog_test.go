package eventlog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shine-lab/orchestration-core/internal/models"
)

func TestDeviceSnapshots(t *testing.T) {
	devices := []models.Device{
		{DeviceID: "oven", Interactions: []models.Interaction{{Name: "on", Value: true}}},
	}
	snaps := deviceSnapshots(devices)
	assert.Len(t, snaps, 1)
	assert.Equal(t, "oven", snaps[0].Device)
	assert.Equal(t, "on", snaps[0].Interactions[0].Name)
	assert.Equal(t, true, snaps[0].Interactions[0].Value)
}

func TestEnvironmentFrom(t *testing.T) {
	env := environmentFrom(models.CustomData{"age": float64(34)})
	assert.Len(t, env, 1)
	assert.Equal(t, "age", env[0].Name)
}

func TestBuildSnapshotScalarLog(t *testing.T) {
	l := &Logger{}
	entry := models.LogEntry{ID: 7, Type: string(models.LogDeviceInteraction)}
	meta := l.BuildSnapshotScalarLog(SnapshotInput{
		SessionID:   "s1",
		CurrentTask: "task-1",
		IngameHour:  9,
		IngameMinute: 5,
	}, entry)

	assert.Equal(t, "s1", meta.UserID)
	assert.Equal(t, "09:05", meta.IngameTime)
	assert.NotNil(t, meta.Log)
	assert.Equal(t, int64(7), meta.Log.ID)
	assert.Nil(t, meta.Logs)
}
