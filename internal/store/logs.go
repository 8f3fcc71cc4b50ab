package store

import (
	"context"
	"fmt"

	"github.com/shine-lab/orchestration-core/internal/models"
)

// AppendLog inserts one append-only log entry. Appends are never rolled
// back by a downstream engine failure (§4.6's append-then-notify ordering):
// callers must invoke this before attempting any explanation delivery.
func (s *Store) AppendLog(ctx context.Context, entry *models.LogEntry) (int64, error) {
	metadata, err := entry.MetadataJSON()
	if err != nil {
		return 0, fmt.Errorf("store: append log: %w", err)
	}
	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO log_entries (session_id, type, metadata, timestamp_seconds)
		VALUES ($1, $2, $3, $4) RETURNING id
	`, entry.SessionID, entry.Type, metadata, entry.TimestampSeconds).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: append log: %w", err)
	}
	return id, nil
}

// LogListOptions filters a log listing. An empty Type matches every type,
// mirroring the optional query-param filters handlers/audit.go builds up
// one AND clause at a time.
type LogListOptions struct {
	Type   string
	Limit  int
	Offset int
}

// ListLogs returns a session's logs, most recent first, honoring the same
// dynamic filtered-query-plus-pagination shape the audit log listing uses.
func (s *Store) ListLogs(ctx context.Context, sessionID string, opts LogListOptions) ([]models.LogEntry, error) {
	query := `SELECT id, session_id, type, metadata, timestamp_seconds FROM log_entries WHERE session_id = $1`
	args := []interface{}{sessionID}
	argIdx := 2

	if opts.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, opts.Type)
		argIdx++
	}

	query += " ORDER BY id DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
		argIdx++
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list logs: %w", err)
	}
	defer rows.Close()

	var out []models.LogEntry
	for rows.Next() {
		var entry models.LogEntry
		var raw []byte
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Type, &raw, &entry.TimestampSeconds); err != nil {
			return nil, fmt.Errorf("store: list logs: %w", err)
		}
		if err := entry.ScanMetadata(raw); err != nil {
			return nil, fmt.Errorf("store: list logs: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// AllLogs returns the full current log list for a session in chronological
// order, as the REST-mode Metadata snapshot requires (§4.6).
func (s *Store) AllLogs(ctx context.Context, sessionID string) ([]models.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, type, metadata, timestamp_seconds FROM log_entries
		WHERE session_id = $1 ORDER BY id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: all logs: %w", err)
	}
	defer rows.Close()

	var out []models.LogEntry
	for rows.Next() {
		var entry models.LogEntry
		var raw []byte
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Type, &raw, &entry.TimestampSeconds); err != nil {
			return nil, fmt.Errorf("store: all logs: %w", err)
		}
		if err := entry.ScanMetadata(raw); err != nil {
			return nil, fmt.Errorf("store: all logs: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
