package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"quizbank/internal/app/apiresp"
)

const (
	HeaderEmail = "x-user-email"
	HeaderRole  = "x-user-role"

	// RoleStudent is assumed when the role header is absent or empty.
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

var ErrNoIdentity = errors.New("user email header missing (" + HeaderEmail + ")")

// Identity is the claimed {email, role} pair attached to a request. It is
// derived from client-supplied headers and is NOT verified; it provides
// request-scoped identity propagation, not security.
type Identity struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Verifier resolves the identity claim of an inbound request. The default
// HeaderVerifier trusts request headers; a hardened deployment can swap in
// a session- or token-backed implementation without touching callers.
type Verifier interface {
	ResolveIdentity(r *http.Request) (*Identity, error)
}

type HeaderVerifier struct{}

func (HeaderVerifier) ResolveIdentity(r *http.Request) (*Identity, error) {
	email := strings.TrimSpace(r.Header.Get(HeaderEmail))
	if email == "" {
		return nil, ErrNoIdentity
	}
	role := strings.TrimSpace(r.Header.Get(HeaderRole))
	if role == "" {
		role = RoleStudent
	}
	return &Identity{Email: email, Role: role}, nil
}

type contextKey string

const identityContextKey contextKey = "auth_identity"

func RequireIdentity(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, err := v.ResolveIdentity(r)
			if err != nil {
				apiresp.WriteError(w, http.StatusUnauthorized, "Access denied: "+err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), identityContextKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := CurrentIdentity(r.Context())
			if !ok {
				apiresp.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if _, exists := allowed[ident.Role]; !exists {
				apiresp.WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CurrentIdentity(ctx context.Context) (*Identity, bool) {
	v := ctx.Value(identityContextKey)
	if v == nil {
		return nil, false
	}
	ident, ok := v.(*Identity)
	return ident, ok
}

// ContextWithIdentity injects an identity claim into context.
// Useful for tests and internal handlers.
func ContextWithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}
