package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shine-lab/orchestration-core/internal/apperr"
	"github.com/shine-lab/orchestration-core/internal/models"
)

// InsertTasks bulk-inserts the materialized task list for a freshly created
// session, in the task order the Session Manager assigned.
func (s *Store) InsertTasks(ctx context.Context, tasks []models.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: insert tasks: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (session_id, task_id, task_order, description, start_time, end_time,
		                    is_completed, is_aborted, is_timed_out, aborted_reason, interaction_times)
		VALUES ($1, $2, $3, $4, $5, $6, false, false, false, '', 0)
	`)
	if err != nil {
		return fmt.Errorf("store: insert tasks: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		if _, err := stmt.ExecContext(ctx, t.SessionID, t.TaskID, t.TaskOrder, t.Description, t.StartTime, t.EndTime); err != nil {
			return fmt.Errorf("store: insert task %q: %w", t.TaskID, err)
		}
	}
	return tx.Commit()
}

// GetTasks returns every task for a session, ordered by task_order.
func (s *Store) GetTasks(ctx context.Context, sessionID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, task_id, task_order, description, start_time, end_time,
		       is_completed, is_aborted, is_timed_out, completion_time, aborted_reason,
		       duration_seconds, interaction_times
		FROM tasks WHERE session_id = $1 ORDER BY task_order ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: get tasks: %w", err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.SessionID, &t.TaskID, &t.TaskOrder, &t.Description, &t.StartTime, &t.EndTime,
			&t.IsCompleted, &t.IsAborted, &t.IsTimedOut, &t.CompletionTime, &t.AbortedReason,
			&t.DurationSeconds, &t.InteractionTimes); err != nil {
			return nil, fmt.Errorf("store: get tasks: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTask loads a single task by (session, task) id.
func (s *Store) GetTask(ctx context.Context, sessionID, taskID string) (*models.Task, error) {
	var t models.Task
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, task_id, task_order, description, start_time, end_time,
		       is_completed, is_aborted, is_timed_out, completion_time, aborted_reason,
		       duration_seconds, interaction_times
		FROM tasks WHERE session_id = $1 AND task_id = $2
	`, sessionID, taskID).Scan(&t.SessionID, &t.TaskID, &t.TaskOrder, &t.Description, &t.StartTime, &t.EndTime,
		&t.IsCompleted, &t.IsAborted, &t.IsTimedOut, &t.CompletionTime, &t.AbortedReason,
		&t.DurationSeconds, &t.InteractionTimes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("task not found")
	}
	if err != nil {
		return nil, fmt.Errorf("store: get task: %w", err)
	}
	return &t, nil
}

// SetTaskWindow updates a task's [start, end] window, used by the re-timing
// cascade when an earlier task completes and shifts every subsequent
// window forward (§4.3).
func (s *Store) SetTaskWindow(ctx context.Context, sessionID, taskID string, start, end time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET start_time = $3, end_time = $4 WHERE session_id = $1 AND task_id = $2
	`, sessionID, taskID, start, end)
	if err != nil {
		return fmt.Errorf("store: set task window: %w", err)
	}
	return nil
}

// FinishTask marks a task completed, aborted or timed out — a terminal
// transition that must not be overwritten once set (I2).
func (s *Store) FinishTask(ctx context.Context, sessionID, taskID string, outcome models.LogType, reason string, duration float64, completedAt time.Time) error {
	var col string
	switch outcome {
	case models.LogTaskCompleted:
		col = "is_completed"
	case models.LogAbortTask:
		col = "is_aborted"
	case models.LogTaskTimeout:
		col = "is_timed_out"
	default:
		return fmt.Errorf("store: finish task: unsupported outcome %q", outcome)
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE tasks SET %s = true, completion_time = $3, aborted_reason = $4, duration_seconds = $5
		WHERE session_id = $1 AND task_id = $2 AND is_completed = false AND is_aborted = false AND is_timed_out = false
	`, col), sessionID, taskID, completedAt, reason, duration)
	if err != nil {
		return fmt.Errorf("store: finish task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: finish task: %w", err)
	}
	if n == 0 {
		return apperr.Precondition("task already terminal")
	}
	return nil
}

// IncrementInteractionTimes bumps a task's interaction counter by one.
func (s *Store) IncrementInteractionTimes(ctx context.Context, sessionID, taskID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET interaction_times = interaction_times + 1 WHERE session_id = $1 AND task_id = $2
	`, sessionID, taskID)
	if err != nil {
		return fmt.Errorf("store: increment interaction times: %w", err)
	}
	return nil
}
