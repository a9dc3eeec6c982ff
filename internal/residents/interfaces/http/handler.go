package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/audit"
	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/auth"
	billinghttp "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/billing/interfaces"
	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/application"
	residents "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/residents/domain"
)

// Handler serves the resident roster API. Billing operations nested under
// a resident path (debt, payments, reset-status, receipt) are delegated
// to the billing handler so the route layout matches the resource tree.
type Handler struct {
	service     *application.Service
	billing     *billinghttp.Handler
	auditLogger audit.Logger
}

// NewHandler constructs a resident handler.
func NewHandler(service *application.Service, billing *billinghttp.Handler, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("resident handler: nil service")
	}
	if billing == nil {
		return nil, errors.New("resident handler: nil billing handler")
	}
	return &Handler{service: service, billing: billing, auditLogger: auditLogger}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/residents":
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case r.URL.Path == "/api/v1/stats":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleStats(w, r)
	case r.URL.Path == "/api/v1/exports/residents.xlsx":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleExportXLSX(w, r)
	case r.URL.Path == "/api/v1/imports/residents":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleImportXLSX(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/residents/"):
		h.routeResident(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) routeResident(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/residents/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, id)
		case http.MethodPut:
			h.handleUpdate(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "debt":
		h.billing.HandleDebt(w, r, id)
	case "payments":
		h.billing.HandleRecordPayment(w, r, id)
	case "reset-status":
		h.billing.HandleResetStatus(w, r, id)
	case "receipt.pdf":
		h.billing.HandleReceiptPDF(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		respondResidentError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	resident, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondResidentError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resident)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var resident residents.Resident
	if err := json.NewDecoder(r.Body).Decode(&resident); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.service.Create(r.Context(), &resident); err != nil {
		respondResidentError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resident)
	h.logAudit(r, "resident.create", resident.ID, map[string]any{"nik": resident.NIK})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var resident residents.Resident
	if err := json.NewDecoder(r.Body).Decode(&resident); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	resident.ID = id
	if err := h.service.Update(r.Context(), &resident); err != nil {
		respondResidentError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resident)
	h.logAudit(r, "resident.update", id, nil)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondResidentError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, "resident.delete", id, nil)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		respondResidentError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

func (h *Handler) logAudit(r *http.Request, action, residentID string, meta map[string]any) {
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
		ResourceType: "resident",
		ResourceID:   residentID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondResidentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, residents.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, residents.ErrEmptyName),
		errors.Is(err, residents.ErrEmptyNIK),
		errors.Is(err, residents.ErrEmptyFamilyCard):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
