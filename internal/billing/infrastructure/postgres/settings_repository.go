package postgres

import (
	"context"
	"database/sql"
	"errors"
)

const settingKeyIPLAmount = "ipl_amount"

// SettingsRepository reads and writes global app settings rows.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository constructs a repository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetIPLAmount returns the stored monthly fee as its raw string value.
// A missing row reads as "0": billing degrades to no obligation rather
// than failing the page.
func (r *SettingsRepository) GetIPLAmount(ctx context.Context) (string, error) {
	if r == nil || r.db == nil {
		return "", errors.New("settings repo: nil db")
	}
	var value string
	err := r.db.QueryRowContext(ctx, `
SELECT value FROM app_settings WHERE key = $1 LIMIT 1`, settingKeyIPLAmount).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "0", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// UpsertIPLAmount writes the monthly fee setting.
func (r *SettingsRepository) UpsertIPLAmount(ctx context.Context, value string) error {
	if r == nil || r.db == nil {
		return errors.New("settings repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO app_settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, settingKeyIPLAmount, value)
	return err
}
