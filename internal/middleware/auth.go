// Package middleware provides HTTP middleware for the ACE API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/digi0/ACE/internal/models"
	apierrors "github.com/digi0/ACE/internal/pkg/errors"
	"github.com/digi0/ACE/internal/pkg/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	userKey  contextKey = "user"
	tokenKey contextKey = "session_token"
)

// SessionResolver maps a session token to its user.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*models.User, error)
}

// TokenFromRequest reads the session token from the named cookie first and
// falls back to an "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// RequireSession resolves the caller's session on every request and rejects
// the request with 401 when it cannot.
func RequireSession(resolver SessionResolver, cookieName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, cookieName)
			user, err := resolver.ResolveSession(r.Context(), token)
			if err != nil {
				response.Error(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects authenticated non-admin users with 403. It must run
// after RequireSession.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user == nil {
			response.Error(w, apierrors.ErrUnauthenticated)
			return
		}
		if !user.IsAdmin {
			response.Error(w, apierrors.ErrForbidden.WithMessage("Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUser returns the authenticated user from context, or nil.
func GetUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// GetSessionToken returns the token the request authenticated with.
func GetSessionToken(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// WithUser returns a context carrying user. Used by tests.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
