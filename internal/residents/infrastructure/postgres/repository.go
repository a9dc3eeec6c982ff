package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	residents "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/domain"
)

// Filter narrows resident listings to a household scope.
type Filter struct {
	Block       string
	HouseNumber string
	Search      string
}

// Repository persists resident records.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const residentColumns = `
	id, nik, nomor_kk, nama, no_hp_kepala, jumlah_anggota, anggota_keluarga,
	jenis_kelamin, tanggal_lahir, alamat, nomor_rumah, blok_rumah, rt, rw,
	status_kepemilikan_rumah, nominal_ipl, status_ipl, created_at`

// List returns residents newest first, optionally filtered.
func (r *Repository) List(ctx context.Context, filter Filter) ([]residents.Resident, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("resident repo: nil db")
	}
	query := `SELECT` + residentColumns + `
FROM residents
WHERE ($1 = '' OR blok_rumah = $1)
	AND ($2 = '' OR nomor_rumah = $2)
	AND ($3 = '' OR nama ILIKE '%' || $3 || '%' OR blok_rumah ILIKE '%' || $3 || '%' OR nomor_rumah ILIKE '%' || $3 || '%')
ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, filter.Block, filter.HouseNumber, filter.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []residents.Resident
	for rows.Next() {
		resident, err := scanResident(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *resident)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get fetches one resident by id.
func (r *Repository) Get(ctx context.Context, id string) (*residents.Resident, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("resident repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `SELECT`+residentColumns+`
FROM residents
WHERE id = $1
LIMIT 1`, id)
	resident, err := scanResident(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, residents.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return resident, nil
}

// Create inserts a resident, assigning id and created_at when unset.
func (r *Repository) Create(ctx context.Context, resident *residents.Resident) error {
	if r == nil || r.db == nil {
		return errors.New("resident repo: nil db")
	}
	if resident == nil {
		return errors.New("resident repo: nil resident")
	}
	if resident.ID == "" {
		resident.ID = uuid.NewString()
	}
	if resident.CreatedAt.IsZero() {
		resident.CreatedAt = time.Now().UTC()
	}
	if resident.IPLStatus == "" {
		resident.IPLStatus = residents.IPLStatusUnpaid
	}
	members, err := json.Marshal(resident.FamilyMembers)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO residents (
	id, nik, nomor_kk, nama, no_hp_kepala, jumlah_anggota, anggota_keluarga,
	jenis_kelamin, tanggal_lahir, alamat, nomor_rumah, blok_rumah, rt, rw,
	status_kepemilikan_rumah, nominal_ipl, status_ipl, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
)`,
		resident.ID, resident.NIK, resident.FamilyCardNumber, resident.Name, resident.HeadPhone,
		resident.MemberCount, members, resident.Gender, nullableDate(resident.BirthDate),
		resident.Address, resident.HouseNumber, resident.Block, resident.RT, resident.RW,
		resident.OwnershipStatus, resident.IPLAmount, resident.IPLStatus, resident.CreatedAt,
	)
	return err
}

// Update replaces a resident's stored fields. created_at is immutable: it
// anchors the billing obligation.
func (r *Repository) Update(ctx context.Context, resident *residents.Resident) error {
	if r == nil || r.db == nil {
		return errors.New("resident repo: nil db")
	}
	if resident == nil || resident.ID == "" {
		return errors.New("resident repo: missing id")
	}
	members, err := json.Marshal(resident.FamilyMembers)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE residents SET
	nik = $2, nomor_kk = $3, nama = $4, no_hp_kepala = $5, jumlah_anggota = $6,
	anggota_keluarga = $7, jenis_kelamin = $8, tanggal_lahir = $9, alamat = $10,
	nomor_rumah = $11, blok_rumah = $12, rt = $13, rw = $14,
	status_kepemilikan_rumah = $15, nominal_ipl = $16, status_ipl = $17
WHERE id = $1`,
		resident.ID, resident.NIK, resident.FamilyCardNumber, resident.Name, resident.HeadPhone,
		resident.MemberCount, members, resident.Gender, nullableDate(resident.BirthDate),
		resident.Address, resident.HouseNumber, resident.Block, resident.RT, resident.RW,
		resident.OwnershipStatus, resident.IPLAmount, resident.IPLStatus,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return residents.ErrNotFound
	}
	return nil
}

// Delete removes a resident by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("resident repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM residents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return residents.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResident(row rowScanner) (*residents.Resident, error) {
	var resident residents.Resident
	var members []byte
	var headPhone, address, houseNumber, block, rt, rw, ownership, status sql.NullString
	var memberCount sql.NullInt64
	var birthDate sql.NullTime
	var amount decimal.NullDecimal

	err := row.Scan(
		&resident.ID, &resident.NIK, &resident.FamilyCardNumber, &resident.Name,
		&headPhone, &memberCount, &members, &resident.Gender, &birthDate,
		&address, &houseNumber, &block, &rt, &rw, &ownership, &amount, &status,
		&resident.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	resident.HeadPhone = headPhone.String
	resident.MemberCount = int(memberCount.Int64)
	resident.Address = address.String
	resident.HouseNumber = houseNumber.String
	resident.Block = block.String
	resident.RT = rt.String
	resident.RW = rw.String
	resident.OwnershipStatus = ownership.String
	resident.IPLStatus = status.String
	if birthDate.Valid {
		resident.BirthDate = birthDate.Time
	}
	if amount.Valid {
		resident.IPLAmount = amount.Decimal
	} else {
		resident.IPLAmount = decimal.Zero
	}
	if len(members) > 0 {
		if err := json.Unmarshal(members, &resident.FamilyMembers); err != nil {
			return nil, err
		}
	}
	return &resident, nil
}

func nullableDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
