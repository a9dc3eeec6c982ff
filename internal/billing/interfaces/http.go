package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/audit"
	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/auth"
	billingapp "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/billing/application"
	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/observability/metrics"
	residents "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/domain"
)

// Handler serves billing APIs: the fee setting, payment history, the
// exports, and the resident-scoped billing operations delegated to it by
// the residents handler.
type Handler struct {
	service     *billingapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a billing handler.
func NewHandler(service *billingapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("billing handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles the non-resident-scoped billing routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/billing/settings":
		switch r.Method {
		case http.MethodGet:
			h.handleGetSettings(w, r)
		case http.MethodPut:
			h.handleUpdateSettings(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "/api/v1/payments":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleHistory(w, r)
	case "/api/v1/exports/payments.xlsx":
		h.handleExportXLSX(w, r)
	case "/api/v1/exports/payments.csv":
		h.handleExportCSV(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	fee, err := h.service.MonthlyFee(r.Context())
	if err != nil {
		respondBillingError(w, err)
		return
	}
	resp := map[string]any{
		"ipl_amount": fee.String(),
		"currency":   h.service.Policy().Currency,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IPLAmount string `json:"ipl_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.service.UpdateMonthlyFee(r.Context(), req.IPLAmount); err != nil {
		respondBillingError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, "settings.update", "setting", "ipl_amount", map[string]any{
		"ipl_amount": req.IPLAmount,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.History(r.Context())
	if err != nil {
		respondBillingError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(history)
}

// HandleDebt serves GET /api/v1/residents/{id}/debt.
func (h *Handler) HandleDebt(w http.ResponseWriter, r *http.Request, residentID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	summary, err := h.service.DebtSummary(r.Context(), residentID)
	if err != nil {
		respondBillingError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

// HandleRecordPayment serves POST /api/v1/residents/{id}/payments.
func (h *Handler) HandleRecordPayment(w http.ResponseWriter, r *http.Request, residentID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	covered, err := h.service.RecordPayment(r.Context(), residentID, amount)
	if err != nil {
		respondBillingError(w, err)
		return
	}
	resp := map[string]any{
		"resident_id":     residentID,
		"covered_periods": covered,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
	h.logAudit(r, "payment.record", "resident", residentID, map[string]any{
		"amount":  req.Amount,
		"periods": len(covered),
	})
}

// HandleResetStatus serves POST /api/v1/residents/{id}/reset-status.
func (h *Handler) HandleResetStatus(w http.ResponseWriter, r *http.Request, residentID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := h.service.ResetStatus(r.Context(), residentID); err != nil {
		respondBillingError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, "payment.reset_status", "resident", residentID, nil)
}

// HandleReceiptPDF serves GET /api/v1/residents/{id}/receipt.pdf.
func (h *Handler) HandleReceiptPDF(w http.ResponseWriter, r *http.Request, residentID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("pdf", result, time.Since(start))
	}()

	household, payments, err := h.service.LatestPayments(r.Context(), residentID)
	if err != nil {
		result = metrics.ResultError
		respondBillingError(w, err)
		return
	}
	data, err := BuildReceiptPDF(household, payments, h.service.Policy().Currency)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export pdf error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, "payment.export", "resident", residentID, map[string]any{"format": "pdf"})
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("xlsx", result, time.Since(start))
	}()

	history, err := h.service.History(r.Context())
	if err != nil {
		result = metrics.ResultError
		respondBillingError(w, err)
		return
	}
	data, err := BuildPaymentsXLSX(history, h.service.Policy().Currency)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="ipl-payments.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, "payment.export", "payments", "", map[string]any{"format": "xlsx"})
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("csv", result, time.Since(start))
	}()

	history, err := h.service.History(r.Context())
	if err != nil {
		result = metrics.ResultError
		respondBillingError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ipl-payments.csv"`)
	if err := WritePaymentsCSV(w, history); err != nil {
		result = metrics.ResultError
		return
	}
	h.logAudit(r, "payment.export", "payments", "", map[string]any{"format": "csv"})
}

func (h *Handler) logAudit(r *http.Request, action, resourceType, resourceID string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	actor := auth.UsernameFromContext(r.Context())
	if actor == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        actor,
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondBillingError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, residents.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, billingapp.ErrInvalidAmount),
		errors.Is(err, billingapp.ErrAmountTooLow),
		errors.Is(err, billingapp.ErrMonthlyFeeNotSet),
		errors.Is(err, billingapp.ErrNothingOutstanding):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
