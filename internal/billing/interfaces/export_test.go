package interfaces

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	billing "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/billing/domain"
	residents "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/domain"
)

func sampleHistory() []billing.HistoryEntry {
	return []billing.HistoryEntry{
		{
			Payment: billing.Payment{
				ID:         "pay-1",
				ResidentID: "res-1",
				Amount:     decimal.NewFromInt(150000),
				Period:     billing.Period("2024-02"),
				Status:     billing.PaymentStatusPaid,
				PaidAt:     time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
			},
			ResidentName: "Budi Santoso",
			Block:        "A",
			HouseNumber:  "12",
		},
		{
			Payment: billing.Payment{
				ID:         "pay-2",
				ResidentID: "res-2",
				Amount:     decimal.NewFromInt(150000),
				Period:     billing.Period("2024-03"),
				Status:     billing.PaymentStatusPaid,
				PaidAt:     time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC),
			},
			ResidentName: "Siti Aminah",
			Block:        "B",
			HouseNumber:  "3",
		},
	}
}

func TestWritePaymentsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePaymentsCSV(&buf, sampleHistory()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header plus 2 rows", len(records))
	}
	if records[0][0] != "name" || records[0][3] != "period" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][0] != "Budi Santoso" || records[1][3] != "2024-02" || records[1][4] != "150000" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[2][6] != "2024-03-06" {
		t.Fatalf("unexpected paid_at: %v", records[2])
	}
}

func TestBuildPaymentsXLSX(t *testing.T) {
	data, err := BuildPaymentsXLSX(sampleHistory(), "IDR")
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty workbook")
	}
	// XLSX files are zip archives.
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatal("output is not a zip archive")
	}
}

func TestBuildReceiptPDF(t *testing.T) {
	household := &residents.Resident{
		Name:        "Budi Santoso",
		Address:     "Jl. Madani Raya",
		Block:       "A",
		HouseNumber: "12",
		IPLStatus:   residents.IPLStatusPaid,
	}
	payments := []billing.Payment{
		{Period: "2024-02", Amount: decimal.NewFromInt(150000), PaidAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	data, err := BuildReceiptPDF(household, payments, "IDR")
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Fatal("output is not a pdf")
	}
}
