package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthMiddleware_NoToken(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/residents", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddleware_UserForbiddenResidentCreate(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "warga-a1", RoleUser, Scope{Block: "A", HouseNumber: "1"})
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/residents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_UserForbiddenPaymentRecord(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "warga-a1", RoleUser, Scope{})
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/residents/res-1/payments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_AdminAllowedSettingsUpdate(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "trisno", RoleAdmin, Scope{})
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)

	var gotUser string
	var gotRole Role
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UsernameFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/billing/settings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotUser != "trisno" || gotRole != RoleAdmin {
		t.Fatalf("identity not threaded: user=%q role=%q", gotUser, gotRole)
	}
}

func TestAuthMiddleware_ScopeThreadedThroughContext(t *testing.T) {
	secret := []byte("test-secret")
	scope := Scope{Block: "B", HouseNumber: "12"}
	token := mustToken(t, secret, "warga-b12", RoleUser, scope)
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)

	var got Scope
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ScopeFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/residents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got != scope {
		t.Fatalf("expected scope %+v, got %+v", scope, got)
	}
}

func TestAuthMiddleware_ExemptPathsSkipAuth(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy([]string{"/healthz"}, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestScopeAllowsHousehold(t *testing.T) {
	unrestricted := Scope{}
	if !unrestricted.AllowsHousehold("A", "1") {
		t.Fatal("unrestricted scope must allow everything")
	}

	scoped := Scope{Block: "A", HouseNumber: "1"}
	if !scoped.AllowsHousehold("A", "1") {
		t.Fatal("expected own household allowed")
	}
	if scoped.AllowsHousehold("A", "2") {
		t.Fatal("expected other house denied")
	}
	if scoped.AllowsHousehold("B", "1") {
		t.Fatal("expected other block denied")
	}
}

func mustToken(t *testing.T, secret []byte, username string, role Role, scope Scope) string {
	t.Helper()
	token, err := IssueJWT(secret, username, role, scope, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
