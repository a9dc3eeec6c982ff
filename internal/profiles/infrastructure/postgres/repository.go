package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/auth"
	profiles "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/profiles/domain"
)

// Repository persists login profiles.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const profileColumns = `
	id, username, password, role, COALESCE(restricted_blok, ''),
	COALESCE(restricted_nomor_rumah, ''), created_at`

// List returns all profiles, newest first.
func (r *Repository) List(ctx context.Context) ([]profiles.Profile, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("profile repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `SELECT`+profileColumns+`
FROM profiles
ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []profiles.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByUsername fetches one profile by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*profiles.Profile, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("profile repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `SELECT`+profileColumns+`
FROM profiles
WHERE username = $1
LIMIT 1`, username)
	profile, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, profiles.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Create inserts a profile, assigning id and created_at when unset.
func (r *Repository) Create(ctx context.Context, profile *profiles.Profile) error {
	if r == nil || r.db == nil {
		return errors.New("profile repo: nil db")
	}
	if profile == nil {
		return errors.New("profile repo: nil profile")
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO profiles (id, username, password, role, restricted_blok, restricted_nomor_rumah, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		profile.ID, profile.Username, profile.Password, string(profile.Role),
		nullableString(profile.RestrictedBlock), nullableString(profile.RestrictedHouseNumber), profile.CreatedAt)
	return err
}

// CreateBatch inserts profiles in one transaction; the whole batch fails
// together so a half-imported user list never exists.
func (r *Repository) CreateBatch(ctx context.Context, batch []profiles.Profile) error {
	if r == nil || r.db == nil {
		return errors.New("profile repo: nil db")
	}
	if len(batch) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range batch {
		profile := &batch[i]
		if profile.ID == "" {
			profile.ID = uuid.NewString()
		}
		if profile.CreatedAt.IsZero() {
			profile.CreatedAt = now
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO profiles (id, username, password, role, restricted_blok, restricted_nomor_rumah, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			profile.ID, profile.Username, profile.Password, string(profile.Role),
			nullableString(profile.RestrictedBlock), nullableString(profile.RestrictedHouseNumber), profile.CreatedAt)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a profile by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("profile repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return profiles.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces a profile's password by username.
func (r *Repository) UpdatePassword(ctx context.Context, username, password string) error {
	if r == nil || r.db == nil {
		return errors.New("profile repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE profiles SET password = $2 WHERE username = $1`, username, password)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return profiles.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*profiles.Profile, error) {
	var profile profiles.Profile
	var role string
	err := row.Scan(
		&profile.ID, &profile.Username, &profile.Password, &role,
		&profile.RestrictedBlock, &profile.RestrictedHouseNumber, &profile.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if normalized, ok := auth.NormalizeRole(role); ok {
		profile.Role = normalized
	} else {
		profile.Role = auth.Role(role)
	}
	return &profile, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
