// Package store persists sessions, tasks, devices, logs and explanations to
// Postgres via database/sql + lib/pq, following the raw-SQL, no-ORM idiom
// this codebase's lineage uses for its own data access (session_reconciler.go,
// handlers/audit.go).
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/shine-lab/orchestration-core/internal/logging"
)

// Store wraps a *sql.DB connection pool shared by every collection in this
// package.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection with a ping, then
// ensures the schema this service owns exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	logging.Store().Info().Msg("connected to postgres")
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id       TEXT PRIMARY KEY,
			start_time       TIMESTAMPTZ NOT NULL,
			last_activity    TIMESTAMPTZ NOT NULL,
			is_completed     BOOLEAN NOT NULL DEFAULT false,
			completion_time  TIMESTAMPTZ,
			custom_data      JSONB NOT NULL DEFAULT '{}',
			explanation_cache TEXT,
			socket_id        TEXT,
			user_agent       TEXT NOT NULL DEFAULT '',
			screen_size      TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			session_id        TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
			task_id           TEXT NOT NULL,
			task_order        INTEGER NOT NULL,
			description       TEXT NOT NULL DEFAULT '',
			start_time        TIMESTAMPTZ NOT NULL,
			end_time          TIMESTAMPTZ NOT NULL,
			is_completed      BOOLEAN NOT NULL DEFAULT false,
			is_aborted        BOOLEAN NOT NULL DEFAULT false,
			is_timed_out      BOOLEAN NOT NULL DEFAULT false,
			completion_time   TIMESTAMPTZ,
			aborted_reason    TEXT NOT NULL DEFAULT '',
			duration_seconds  DOUBLE PRECISION,
			interaction_times INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (session_id, task_id)
		)`,
		`CREATE TABLE IF NOT EXISTS devices (
			session_id   TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
			device_id    TEXT NOT NULL,
			interactions JSONB NOT NULL DEFAULT '[]',
			PRIMARY KEY (session_id, device_id)
		)`,
		`CREATE TABLE IF NOT EXISTS log_entries (
			id                BIGSERIAL PRIMARY KEY,
			session_id        TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
			type              TEXT NOT NULL,
			metadata          JSONB NOT NULL DEFAULT '{}',
			timestamp_seconds DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS log_entries_session_idx ON log_entries(session_id, id)`,
		`CREATE TABLE IF NOT EXISTS explanations (
			explanation_id TEXT PRIMARY KEY,
			session_id     TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
			task_id        TEXT NOT NULL DEFAULT '',
			explanation    TEXT NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL,
			delay_seconds  DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating         INTEGER
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: ensure schema: %w", err)
		}
	}
	return nil
}
