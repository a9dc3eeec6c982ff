package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billing "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/billing/domain"
)

// PaymentRepository persists IPL payments.
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository constructs a repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ListPaidPeriods returns the periods already paid for a resident.
func (r *PaymentRepository) ListPaidPeriods(ctx context.Context, residentID string) ([]billing.Period, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("payment repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT period
FROM ipl_payments
WHERE resident_id = $1 AND status = $2
ORDER BY period ASC`, residentID, billing.PaymentStatusPaid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []billing.Period
	for rows.Next() {
		var period string
		if err := rows.Scan(&period); err != nil {
			return nil, err
		}
		periods = append(periods, billing.Period(period))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return periods, nil
}

// RecordAllocation inserts one payment row per covered period and flips
// the resident's IPL status in the same transaction. markPaid decides the
// resulting status flag; the rows themselves are always PAID.
func (r *PaymentRepository) RecordAllocation(ctx context.Context, residentID string, periods []billing.Period, perPeriodAmount decimal.Decimal, markPaid bool, statusPaid, statusUnpaid string, at time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("payment repo: nil db")
	}
	if residentID == "" {
		return errors.New("payment repo: empty resident id")
	}
	if len(periods) == 0 {
		return errors.New("payment repo: no periods to record")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, period := range periods {
		_, err := tx.ExecContext(ctx, `
INSERT INTO ipl_payments (id, resident_id, amount, period, status, payment_date)
VALUES ($1,$2,$3,$4,$5,$6)`,
			uuid.NewString(), residentID, perPeriodAmount, period.String(), billing.PaymentStatusPaid, at)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	status := statusUnpaid
	if markPaid {
		status = statusPaid
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE residents SET status_ipl = $2 WHERE id = $1`, residentID, status); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// UpdateResidentStatus sets the status flag outside a payment recording.
func (r *PaymentRepository) UpdateResidentStatus(ctx context.Context, residentID, status string) error {
	if r == nil || r.db == nil {
		return errors.New("payment repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE residents SET status_ipl = $2 WHERE id = $1`, residentID, status)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListHistory returns payments joined with household identity, newest
// first, optionally narrowed to one household scope.
func (r *PaymentRepository) ListHistory(ctx context.Context, block, houseNumber string) ([]billing.HistoryEntry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("payment repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT p.id, p.resident_id, p.amount, p.period, p.status, p.payment_date,
	r.nama, COALESCE(r.blok_rumah, ''), COALESCE(r.nomor_rumah, '')
FROM ipl_payments p
JOIN residents r ON r.id = p.resident_id
WHERE ($1 = '' OR r.blok_rumah = $1)
	AND ($2 = '' OR r.nomor_rumah = $2)
ORDER BY p.payment_date DESC`, block, houseNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []billing.HistoryEntry
	for rows.Next() {
		var entry billing.HistoryEntry
		var period string
		if err := rows.Scan(
			&entry.ID, &entry.ResidentID, &entry.Amount, &period, &entry.Status, &entry.PaidAt,
			&entry.ResidentName, &entry.Block, &entry.HouseNumber,
		); err != nil {
			return nil, err
		}
		entry.Period = billing.Period(period)
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LatestForResident returns the most recent payments of one resident up
// to limit rows, newest first. Used for receipts.
func (r *PaymentRepository) LatestForResident(ctx context.Context, residentID string, limit int) ([]billing.Payment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("payment repo: nil db")
	}
	if limit <= 0 {
		limit = 12
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, resident_id, amount, period, status, payment_date
FROM ipl_payments
WHERE resident_id = $1
ORDER BY payment_date DESC, period DESC
LIMIT $2`, residentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []billing.Payment
	for rows.Next() {
		var payment billing.Payment
		var period string
		if err := rows.Scan(&payment.ID, &payment.ResidentID, &payment.Amount, &period, &payment.Status, &payment.PaidAt); err != nil {
			return nil, err
		}
		payment.Period = billing.Period(period)
		result = append(result, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
