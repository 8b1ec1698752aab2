package kiosk

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Registry persists kiosk device metadata and refresh tokens.
type Registry struct {
	db *sql.DB
}

// NewRegistry creates a registry.
func NewRegistry(db *sql.DB) *Registry {
	return &Registry{db: db}
}

// Upsert ensures a kiosk record exists.
func (r *Registry) Upsert(ctx context.Context, kioskID string) error {
	if kioskID == "" {
		return errors.New("kiosk id required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kiosks (kiosk_id)
		VALUES ($1)
		ON CONFLICT (kiosk_id) DO UPDATE SET last_seen_at = NOW()
	`, kioskID)
	return err
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Registry) SaveRefreshToken(ctx context.Context, kioskID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (kiosk_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, kioskID, token, expiresAt)
	return err
}

// RevokeRefreshToken marks a token revoked.
func (r *Registry) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}
