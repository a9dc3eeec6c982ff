package auth

import "context"

type contextKey string

const (
	contextKeyUsername contextKey = "auth.username"
	contextKeyRole     contextKey = "auth.role"
	contextKeyScope    contextKey = "auth.scope"
)

// WithIdentity stores auth identity details in context.
func WithIdentity(ctx context.Context, username string, role Role, scope Scope) context.Context {
	ctx = context.WithValue(ctx, contextKeyUsername, username)
	ctx = context.WithValue(ctx, contextKeyRole, role)
	ctx = context.WithValue(ctx, contextKeyScope, scope)
	return ctx
}

// UsernameFromContext extracts the authenticated username from context.
func UsernameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if username, ok := ctx.Value(contextKeyUsername).(string); ok {
		return username
	}
	return ""
}

// RoleFromContext extracts role from context.
func RoleFromContext(ctx context.Context) Role {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeyRole)
	if role, ok := value.(Role); ok {
		return role
	}
	if role, ok := value.(string); ok {
		if normalized, valid := NormalizeRole(role); valid {
			return normalized
		}
	}
	return ""
}

// ScopeFromContext extracts the household scope from context. Admin
// identities carry an unrestricted scope.
func ScopeFromContext(ctx context.Context) Scope {
	if ctx == nil {
		return Scope{}
	}
	if scope, ok := ctx.Value(contextKeyScope).(Scope); ok {
		return scope
	}
	return Scope{}
}
