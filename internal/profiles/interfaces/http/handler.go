package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/audit"
	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/auth"
	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/observability/metrics"
	"github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/profiles/application"
	profiles "github.com/trisnoaminudin-sketch/ClusterMadani-2026/internal/profiles/domain"
)

// Handler serves login and account management.
type Handler struct {
	service     *application.Service
	auditLogger audit.Logger
}

// NewHandler constructs a profile handler.
func NewHandler(service *application.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("profile handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/login":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleLogin(w, r)
	case r.URL.Path == "/api/v1/profiles":
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case r.URL.Path == "/api/v1/imports/profiles":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleImportXLSX(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/profiles/"):
		h.routeProfile(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) routeProfile(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/profiles/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch sub {
	case "":
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleDelete(w, r, id)
	case "password":
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleChangePassword(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, profiles.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(session)
	h.logAudit(r, "auth.login", session.Username, session.Username, string(session.Role), nil)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

type profileRequest struct {
	Username              string `json:"username"`
	Password              string `json:"password"`
	Role                  string `json:"role"`
	RestrictedBlock       string `json:"restricted_blok"`
	RestrictedHouseNumber string `json:"restricted_nomor_rumah"`
}

func (req profileRequest) toProfile() profiles.Profile {
	role, ok := auth.NormalizeRole(req.Role)
	if !ok {
		role = auth.Role(req.Role)
	}
	return profiles.Profile{
		Username:              strings.TrimSpace(req.Username),
		Password:              req.Password,
		Role:                  role,
		RestrictedBlock:       strings.TrimSpace(req.RestrictedBlock),
		RestrictedHouseNumber: strings.TrimSpace(req.RestrictedHouseNumber),
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	profile := req.toProfile()
	if err := h.service.Create(r.Context(), &profile); err != nil {
		respondProfileError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(profile)
	h.logAudit(r, "profile.create", profile.ID, "", "", map[string]any{
		"username": profile.Username,
		"role":     string(profile.Role),
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondProfileError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, "profile.delete", id, "", "", nil)
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request, username string) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.service.ChangePassword(r.Context(), username, req.Password); err != nil {
		respondProfileError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, "profile.password_change", username, "", "", nil)
}

func (h *Handler) handleImportXLSX(w http.ResponseWriter, r *http.Request) {
	batch, err := ParseProfilesXLSX(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(batch) == 0 {
		http.Error(w, "import: no rows", http.StatusBadRequest)
		return
	}
	if err := h.service.CreateBatch(r.Context(), batch); err != nil {
		respondProfileError(w, err)
		return
	}
	metrics.AddImportRows("profiles", metrics.ResultSuccess, len(batch))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"created": len(batch)})
	h.logAudit(r, "profile.import", "", "", "", map[string]any{"created": len(batch)})
}

// ParseProfilesXLSX reads an account spreadsheet: username, password,
// role, restricted block, restricted house number. The first row is the
// header. Unlike the roster import this batch is all-or-nothing, because
// a half-imported account list locks people out.
func ParseProfilesXLSX(src io.Reader) ([]profiles.Profile, error) {
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

	var batch []profiles.Profile
	for _, row := range rows[1:] {
		for len(row) < 5 {
			row = append(row, "")
		}
		req := profileRequest{
			Username:              row[0],
			Password:              row[1],
			Role:                  strings.ToLower(strings.TrimSpace(row[2])),
			RestrictedBlock:       row[3],
			RestrictedHouseNumber: row[4],
		}
		if strings.TrimSpace(req.Username) == "" {
			continue
		}
		batch = append(batch, req.toProfile())
	}
	return batch, nil
}

func (h *Handler) logAudit(r *http.Request, action, resourceID, actorOverride, roleOverride string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	actor := auth.UsernameFromContext(r.Context())
	role := string(auth.RoleFromContext(r.Context()))
	if actor == "" {
		actor = actorOverride
		role = roleOverride
	}
	if actor == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        actor,
		Role:         role,
		Action:       action,
		ResourceType: "profile",
		ResourceID:   resourceID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profiles.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, profiles.ErrEmptyUsername),
		errors.Is(err, profiles.ErrEmptyPassword),
		errors.Is(err, profiles.ErrInvalidRole):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
