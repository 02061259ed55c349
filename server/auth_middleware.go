package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/oauthmodel"
	"github.com/jrsteele09/go-admin-client/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated user
	ContextKeyUser ContextKey = "user"
	// ContextKeyAccessToken stores the raw bearer token
	ContextKeyAccessToken ContextKey = "access_token"
)

// UserFromContext returns the user set by RequireAuth
func UserFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*users.User)
	return user, ok
}

// RequireAuth is middleware that validates a Bearer access token
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				s.unauthorized(w, "Missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				s.unauthorized(w, "Invalid Authorization header format")
				return
			}

			token := strings.TrimSpace(parts[1])
			user, _, err := s.auth.Authenticate(token)
			if err != nil {
				description := "Invalid token"
				if errors.Is(err, errors.ErrTokenExpired) {
					description = "Token expired"
				}
				s.unauthorized(w, description)
				return
			}

			s.counters.resourceCalls.Add(1)
			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			ctx = context.WithValue(ctx, ContextKeyAccessToken, token)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireSuperAdmin is middleware that validates super-admin status
// Should be chained after RequireAuth to ensure the user is present
func (s *Server) RequireSuperAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !user.IsSuperAdmin() {
				writeJSONError(w, "forbidden", "Super admin access required", http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
}

func (s *Server) unauthorized(w http.ResponseWriter, description string) {
	s.counters.unauthorized.Add(1)
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	writeJSONError(w, oauthmodel.ErrCodeInvalidToken, description, http.StatusUnauthorized)
}
