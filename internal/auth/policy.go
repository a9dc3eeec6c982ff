package auth

import (
	"net/http"
	"strings"
)

// Policy determines required roles by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves required role for the request. Reads are open to
// every authenticated account; anything that mutates residents, payments,
// settings or accounts is admin-only.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case path == "/api/v1/login":
		return "", false
	case path == "/api/v1/billing/settings":
		if method == http.MethodGet {
			return RoleUser, true
		}
		return RoleAdmin, true
	case path == "/api/v1/payments":
		return RoleUser, true
	case strings.HasPrefix(path, "/api/v1/residents/") && strings.HasSuffix(path, "/debt"):
		return RoleUser, true
	case strings.HasPrefix(path, "/api/v1/residents/") && strings.HasSuffix(path, "/payments"):
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/residents/") && strings.HasSuffix(path, "/reset-status"):
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/residents/") && strings.HasSuffix(path, "/receipt.pdf"):
		return RoleUser, true
	case path == "/api/v1/residents" || strings.HasPrefix(path, "/api/v1/residents/"):
		if method == http.MethodGet {
			return RoleUser, true
		}
		return RoleAdmin, true
	case path == "/api/v1/stats":
		return RoleUser, true
	case strings.HasPrefix(path, "/api/v1/profiles"):
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/exports/"):
		return RoleUser, true
	case strings.HasPrefix(path, "/api/v1/imports/"):
		return RoleAdmin, true
	}

	if strings.HasPrefix(path, "/api/") {
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return RoleUser, true
		}
		return RoleAdmin, true
	}
	return "", false
}
