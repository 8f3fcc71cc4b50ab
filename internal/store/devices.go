package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shine-lab/orchestration-core/internal/apperr"
	"github.com/shine-lab/orchestration-core/internal/models"
)

// InsertDevices bulk-inserts a session's device snapshot at session
// creation, seeded from the configured initial interaction values.
func (s *Store) InsertDevices(ctx context.Context, devices []models.Device) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: insert devices: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO devices (session_id, device_id, interactions) VALUES ($1, $2, $3)
	`)
	if err != nil {
		return fmt.Errorf("store: insert devices: %w", err)
	}
	defer stmt.Close()

	for _, d := range devices {
		raw, err := d.InteractionsJSON()
		if err != nil {
			return fmt.Errorf("store: insert device %q: %w", d.DeviceID, err)
		}
		if _, err := stmt.ExecContext(ctx, d.SessionID, d.DeviceID, raw); err != nil {
			return fmt.Errorf("store: insert device %q: %w", d.DeviceID, err)
		}
	}
	return tx.Commit()
}

// GetDevices returns every device for a session.
func (s *Store) GetDevices(ctx context.Context, sessionID string) ([]models.Device, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, device_id, interactions FROM devices WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: get devices: %w", err)
	}
	defer rows.Close()

	var out []models.Device
	for rows.Next() {
		var d models.Device
		var raw []byte
		if err := rows.Scan(&d.SessionID, &d.DeviceID, &raw); err != nil {
			return nil, fmt.Errorf("store: get devices: %w", err)
		}
		if err := d.ScanInteractions(raw); err != nil {
			return nil, fmt.Errorf("store: get devices: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDevice loads one device by (session, device) id.
func (s *Store) GetDevice(ctx context.Context, sessionID, deviceID string) (*models.Device, error) {
	var d models.Device
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, device_id, interactions FROM devices WHERE session_id = $1 AND device_id = $2
	`, sessionID, deviceID).Scan(&d.SessionID, &d.DeviceID, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("device not found")
	}
	if err != nil {
		return nil, fmt.Errorf("store: get device: %w", err)
	}
	if err := d.ScanInteractions(raw); err != nil {
		return nil, fmt.Errorf("store: get device: %w", err)
	}
	return &d, nil
}

// SaveDevice overwrites a device's full interaction list. Mutations are
// serialized per (session, device) upstream by the session executor, so a
// whole-row replace is safe and avoids a separate per-interaction schema.
func (s *Store) SaveDevice(ctx context.Context, d *models.Device) error {
	raw, err := d.InteractionsJSON()
	if err != nil {
		return fmt.Errorf("store: save device: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE devices SET interactions = $3 WHERE session_id = $1 AND device_id = $2
	`, d.SessionID, d.DeviceID, raw)
	if err != nil {
		return fmt.Errorf("store: save device: %w", err)
	}
	return nil
}
