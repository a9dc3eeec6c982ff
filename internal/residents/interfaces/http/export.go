package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/observability/metrics"
	residents "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/domain"
)

var rosterHeader = []string{
	"NIK", "Nomor KK", "Nama", "No HP", "Jumlah Anggota", "Jenis Kelamin",
	"Tanggal Lahir", "Alamat", "Nomor Rumah", "Blok", "RT", "RW",
	"Status Kepemilikan", "Nominal IPL", "Status IPL",
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("xlsx", result, time.Since(start))
	}()

	list, err := h.service.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		result = metrics.ResultError
		respondResidentError(w, err)
		return
	}
	data, err := BuildRosterXLSX(list)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="residents.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, "resident.export", "", map[string]any{"format": "xlsx", "rows": len(list)})
}

// BuildRosterXLSX renders the visible roster as a spreadsheet, one row
// per household.
func BuildRosterXLSX(list []residents.Resident) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "residents"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range rosterHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, title)
	}
	for i, resident := range list {
		birth := ""
		if !resident.BirthDate.IsZero() {
			birth = resident.BirthDate.Format("2006-01-02")
		}
		values := []any{
			resident.NIK, resident.FamilyCardNumber, resident.Name,
			resident.HeadPhone, resident.MemberCount, resident.Gender,
			birth, resident.Address, resident.HouseNumber, resident.Block,
			resident.RT, resident.RW, resident.OwnershipStatus,
			resident.IPLAmount.String(), resident.IPLStatus,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *Handler) handleImportXLSX(w http.ResponseWriter, r *http.Request) {
	batch, err := ParseRosterXLSX(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, failures := h.service.BulkCreate(r.Context(), batch)
	metrics.AddImportRows("residents", metrics.ResultSuccess, created)
	metrics.AddImportRows("residents", metrics.ResultError, len(failures))

	resp := map[string]any{
		"created": created,
		"failed":  len(failures),
	}
	if len(failures) > 0 {
		msgs := make([]string, 0, len(failures))
		for _, failure := range failures {
			msgs = append(msgs, failure.Error())
		}
		resp["errors"] = msgs
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
	h.logAudit(r, "resident.import", "", map[string]any{"created": created, "failed": len(failures)})
}

// ParseRosterXLSX reads a roster spreadsheet in the export layout back
// into resident records. The first row is the header and is skipped;
// short rows are padded so trailing blank columns do not fail the row.
func ParseRosterXLSX(src io.Reader) ([]residents.Resident, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("import: open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("import: read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	var batch []residents.Resident
	for _, row := range rows[1:] {
		for len(row) < len(rosterHeader) {
			row = append(row, "")
		}
		resident := residents.Resident{
			NIK:              strings.TrimSpace(row[0]),
			FamilyCardNumber: strings.TrimSpace(row[1]),
			Name:             strings.TrimSpace(row[2]),
			HeadPhone:        strings.TrimSpace(row[3]),
			Gender:           strings.TrimSpace(row[5]),
			Address:          strings.TrimSpace(row[7]),
			HouseNumber:      strings.TrimSpace(row[8]),
			Block:            strings.TrimSpace(row[9]),
			RT:               strings.TrimSpace(row[10]),
			RW:               strings.TrimSpace(row[11]),
			OwnershipStatus:  strings.TrimSpace(row[12]),
			IPLStatus:        strings.TrimSpace(row[14]),
		}
		if resident.NIK == "" && resident.Name == "" {
			continue
		}
		if count, err := strconv.Atoi(strings.TrimSpace(row[4])); err == nil {
			resident.MemberCount = count
		}
		if birth, err := time.Parse("2006-01-02", strings.TrimSpace(row[6])); err == nil {
			resident.BirthDate = birth
		}
		if amount, err := decimal.NewFromString(strings.TrimSpace(row[13])); err == nil {
			resident.IPLAmount = amount
		}
		batch = append(batch, resident)
	}
	return batch, nil
}
