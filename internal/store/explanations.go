package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shine-lab/orchestration-core/internal/apperr"
	"github.com/shine-lab/orchestration-core/internal/models"
)

// InsertExplanation persists one produced explanation, whether sourced from
// the integrated engine's canned text or an external engine's response.
func (s *Store) InsertExplanation(ctx context.Context, e *models.Explanation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO explanations (explanation_id, session_id, task_id, explanation, created_at, delay_seconds)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ExplanationID, e.SessionID, e.TaskID, e.Explanation, e.CreatedAt, e.DelaySeconds)
	if err != nil {
		return fmt.Errorf("store: insert explanation: %w", err)
	}
	return nil
}

// GetExplanation loads one explanation by id.
func (s *Store) GetExplanation(ctx context.Context, explanationID string) (*models.Explanation, error) {
	var e models.Explanation
	err := s.db.QueryRowContext(ctx, `
		SELECT explanation_id, session_id, task_id, explanation, created_at, delay_seconds, rating
		FROM explanations WHERE explanation_id = $1
	`, explanationID).Scan(&e.ExplanationID, &e.SessionID, &e.TaskID, &e.Explanation, &e.CreatedAt, &e.DelaySeconds, &e.Rating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("explanation not found")
	}
	if err != nil {
		return nil, fmt.Errorf("store: get explanation: %w", err)
	}
	return &e, nil
}

// RateExplanation records a participant's rating of a previously delivered
// explanation.
func (s *Store) RateExplanation(ctx context.Context, explanationID string, rating int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE explanations SET rating = $2 WHERE explanation_id = $1`, explanationID, rating)
	if err != nil {
		return fmt.Errorf("store: rate explanation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rate explanation: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("explanation not found")
	}
	return nil
}
