package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatusPaid is the only status the system records today; the
// column exists so a future reversal flow does not need a migration.
const PaymentStatusPaid = "PAID"

// Payment is one recorded fee payment for one period of one household.
type Payment struct {
	ID         string          `json:"id"`
	ResidentID string          `json:"resident_id"`
	Amount     decimal.Decimal `json:"amount"`
	Period     Period          `json:"period"`
	Status     string          `json:"status"`
	PaidAt     time.Time       `json:"payment_date"`
}

// HistoryEntry is a payment joined with household identity for reports.
type HistoryEntry struct {
	Payment
	ResidentName string `json:"nama"`
	Block        string `json:"blok_rumah"`
	HouseNumber  string `json:"nomor_rumah"`
}

// DebtSummary is the outstanding position of one household.
type DebtSummary struct {
	ResidentID    string          `json:"resident_id"`
	UnpaidPeriods []Period        `json:"unpaid_periods"`
	MonthlyFee    decimal.Decimal `json:"monthly_fee"`
	TotalDue      decimal.Decimal `json:"total_due"`
}
