package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shine-lab/orchestration-core/internal/models"
)

func TestCurrentTask_FindsWindowContainingNow(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)
	tasks := []models.Task{
		{TaskID: "t0", StartTime: now.Add(-time.Hour), EndTime: now.Add(-time.Minute), IsCompleted: true},
		{TaskID: "t1", StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Minute)},
		{TaskID: "t2", StartTime: now.Add(time.Minute), EndTime: now.Add(time.Hour)},
	}
	current, ok := CurrentTask(tasks, now)
	assert.True(t, ok)
	assert.Equal(t, "t1", current.TaskID)
}

func TestCurrentTask_NoneWhenAllTerminal(t *testing.T) {
	now := time.Now()
	tasks := []models.Task{
		{TaskID: "t0", StartTime: now.Add(-time.Hour), EndTime: now.Add(-time.Minute), IsCompleted: true},
	}
	_, ok := CurrentTask(tasks, now)
	assert.False(t, ok)
}
