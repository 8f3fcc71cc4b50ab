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

// ErrNotFound is returned by single-row lookups that find no matching row.
var ErrNotFound = apperr.NotFound("not found")

// CreateSession inserts a brand-new session row. Callers must check
// ActiveSessionExists first to produce the Conflict response (§6); this
// call itself assumes the id is free.
func (s *Store) CreateSession(ctx context.Context, sess *models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, start_time, last_activity, is_completed, custom_data, user_agent, screen_size)
		VALUES ($1, $2, $3, false, $4, $5, $6)
	`, sess.SessionID, sess.StartTime, sess.LastActivity, customDataJSON(sess.CustomData), sess.UserAgent, sess.ScreenSize)
	if err != nil {
		return fmt.Errorf("store: create session: %w", err)
	}
	return nil
}

// ActiveSessionExists reports whether an incomplete session with this id
// already exists, for the 409-on-duplicate-create check (I1).
func (s *Store) ActiveSessionExists(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM sessions WHERE session_id = $1 AND is_completed = false)
	`, sessionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("store: check active session: %w", err)
	}
	return exists, nil
}

// GetSession loads a session by id.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	var sess models.Session
	var customData []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, start_time, last_activity, is_completed, completion_time,
		       custom_data, explanation_cache, socket_id, user_agent, screen_size
		FROM sessions WHERE session_id = $1
	`, sessionID).Scan(
		&sess.SessionID, &sess.StartTime, &sess.LastActivity, &sess.IsCompleted, &sess.CompletionTime,
		&customData, &sess.ExplanationCache, &sess.SocketID, &sess.UserAgent, &sess.ScreenSize,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("store: get session: %w", err)
	}
	if err := sess.CustomData.Scan(customData); err != nil {
		return nil, fmt.Errorf("store: get session: %w", err)
	}
	return &sess, nil
}

// TouchLastActivity updates the session's last-activity timestamp; the
// Session Manager calls it when a non-completed session is verified.
func (s *Store) TouchLastActivity(ctx context.Context, sessionID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET last_activity = $2 WHERE session_id = $1`, sessionID, at)
	if err != nil {
		return fmt.Errorf("store: touch last activity: %w", err)
	}
	return nil
}

// SetSocketID records (or clears, with nil) the active WebSocket connection
// id for a session. It enforces nothing by itself; the eventbus Hub replaces
// a session's earlier connection when a second one registers.
func (s *Store) SetSocketID(ctx context.Context, sessionID string, socketID *string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET socket_id = $2 WHERE session_id = $1`, sessionID, socketID)
	if err != nil {
		return fmt.Errorf("store: set socket id: %w", err)
	}
	return nil
}

// CompleteSession marks a session finished at the given time.
func (s *Store) CompleteSession(ctx context.Context, sessionID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET is_completed = true, completion_time = $2 WHERE session_id = $1 AND is_completed = false
	`, sessionID, at)
	if err != nil {
		return fmt.Errorf("store: complete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: complete session: %w", err)
	}
	if n == 0 {
		return apperr.Precondition("session already completed or missing")
	}
	return nil
}

// SetExplanationCache overwrites the session's cached latest explanation,
// used by the on_demand+integrated delivery policy (§4.7).
func (s *Store) SetExplanationCache(ctx context.Context, sessionID string, text *string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET explanation_cache = $2 WHERE session_id = $1`, sessionID, text)
	if err != nil {
		return fmt.Errorf("store: set explanation cache: %w", err)
	}
	return nil
}

// ListActiveSessionIDs returns every session id not yet completed, for the
// periodic cross-session sweep (grounded on session_reconciler.go's
// reconcile-all-rows-in-a-state loop).
func (s *Store) ListActiveSessionIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id FROM sessions WHERE is_completed = false`)
	if err != nil {
		return nil, fmt.Errorf("store: list active sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: list active sessions: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func customDataJSON(c models.CustomData) []byte {
	v, _ := c.Value()
	b, _ := v.([]byte)
	return b
}
