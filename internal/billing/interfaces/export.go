package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	billing "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/billing/domain"
	residents "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/domain"
)

// BuildPaymentsXLSX renders the payment history as a spreadsheet.
func BuildPaymentsXLSX(history []billing.HistoryEntry, currency string) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "payments"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Name")
	_ = f.SetCellValue(sheet, "B1", "Block")
	_ = f.SetCellValue(sheet, "C1", "House")
	_ = f.SetCellValue(sheet, "D1", "Period")
	_ = f.SetCellValue(sheet, "E1", fmt.Sprintf("Amount (%s)", currency))
	_ = f.SetCellValue(sheet, "F1", "Status")
	_ = f.SetCellValue(sheet, "G1", "Paid At")
	for i, entry := range history {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), entry.ResidentName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), entry.Block)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), entry.HouseNumber)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(entry.Period))
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), entry.Amount.String())
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), entry.Status)
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), entry.PaidAt.Format("2006-01-02"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePaymentsCSV streams the payment history as CSV.
func WritePaymentsCSV(w io.Writer, history []billing.HistoryEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "block", "house_number", "period", "amount", "status", "paid_at"}); err != nil {
		return err
	}
	for _, entry := range history {
		record := []string{
			entry.ResidentName,
			entry.Block,
			entry.HouseNumber,
			string(entry.Period),
			entry.Amount.String(),
			entry.Status,
			entry.PaidAt.Format("2006-01-02"),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// BuildReceiptPDF renders a payment receipt for one household.
func BuildReceiptPDF(household *residents.Resident, payments []billing.Payment, currency string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "IPL Payment Receipt")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Name: %s", household.Name))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Address: %s Blok %s No. %s", household.Address, household.Block, household.HouseNumber))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", household.IPLStatus))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 6, "Period", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, fmt.Sprintf("Amount (%s)", currency), "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Paid At", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, payment := range payments {
		pdf.CellFormat(50, 6, string(payment.Period), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, payment.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, payment.PaidAt.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
