package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/cutout/internal/services"
	"github.com/desertthunder/cutout/internal/shared"
)

// TokenKey is the settings key holding the bearer token.
const TokenKey = "authToken"

var _ services.TokenStore = (*TokenRepository)(nil)

// TokenRepository persists the auth token as a single settings row.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// LoadToken returns the stored token or [shared.ErrNoToken].
func (r *TokenRepository) LoadToken() (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, TokenKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", shared.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to query token: %w", err)
	}
	if value == "" {
		return "", shared.ErrNoToken
	}
	return value, nil
}

// SaveToken writes the token, replacing any previous value.
func (r *TokenRepository) SaveToken(token string) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, TokenKey, token, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// ClearToken deletes the stored token. Clearing an empty store is not an error.
func (r *TokenRepository) ClearToken() error {
	if _, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, TokenKey); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// UpdatedAt returns when the token was last written.
func (r *TokenRepository) UpdatedAt() (time.Time, error) {
	var updatedAt time.Time
	err := r.db.QueryRow(`SELECT updated_at FROM settings WHERE key = ?`, TokenKey).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, shared.ErrNoToken
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query token timestamp: %w", err)
	}
	return updatedAt, nil
}
