package server

import (
	"net/http"

	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/oauthmodel"
	"github.com/rs/zerolog/log"
)

// LoginHandler exchanges an id and password for a credential pair
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauthmodel.LoginRequest
		if !decodeJSON(w, r, &req) {
			s.counters.loginFailures.Add(1)
			return
		}

		resp, err := s.auth.Login(req)
		if err != nil {
			s.counters.loginFailures.Add(1)
			log.Info().Err(err).Str("id", req.ID).Msg("login rejected")
			switch {
			case errors.Is(err, errors.ErrInvalidRequest):
				writeJSONError(w, oauthmodel.ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest)
			case errors.Is(err, errors.ErrUserBlocked):
				writeJSONError(w, "forbidden", "account is blocked", http.StatusForbidden)
			case errors.Is(err, errors.ErrInvalidCredentials):
				writeJSONError(w, oauthmodel.ErrCodeUnauthorized, "invalid id or password", http.StatusUnauthorized)
			default:
				writeJSONError(w, oauthmodel.ErrCodeServerError, "login failed", http.StatusInternalServerError)
			}
			return
		}

		s.counters.logins.Add(1)
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, resp)
	}
}

// RefreshHandler rotates a refresh token into a new credential pair
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.counters.refreshes.Add(1)

		var req oauthmodel.RefreshRequest
		if !decodeJSON(w, r, &req) {
			s.counters.refreshFailures.Add(1)
			return
		}

		resp, err := s.auth.Refresh(req)
		if err != nil {
			s.counters.refreshFailures.Add(1)
			log.Info().Err(err).Msg("refresh rejected")
			switch {
			case errors.Is(err, errors.ErrInvalidRefreshToken),
				errors.Is(err, errors.ErrRefreshTokenExpired),
				errors.Is(err, errors.ErrUserBlocked):
				writeJSONError(w, oauthmodel.ErrCodeInvalidGrant, err.Error(), http.StatusUnauthorized)
			default:
				writeJSONError(w, oauthmodel.ErrCodeServerError, "refresh failed", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, resp)
	}
}

// LogoutHandler revokes the caller's access token and, when supplied, its refresh token
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauthmodel.RefreshRequest
		if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
			return
		}
		accessToken, _ := r.Context().Value(ContextKeyAccessToken).(string)
		s.auth.Logout(accessToken, req.RefreshToken)
		w.WriteHeader(http.StatusNoContent)
	}
}

// MeHandler returns the authenticated user
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFromContext(r.Context())
		writeJSON(w, http.StatusOK, user)
	}
}

// WellKnownOpenIDConfig serves the OIDC discovery document. The refresh endpoint is advertised
// as token_endpoint; login_endpoint is an extension field.
func (s *Server) WellKnownOpenIDConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baseURL := s.issuerFor(r)

		resp := map[string]any{
			"issuer":                 baseURL,
			"authorization_endpoint": baseURL + RouteAuthLogin,
			"token_endpoint":         baseURL + RouteAuthRefresh,
			"login_endpoint":         baseURL + RouteAuthLogin,
			"end_session_endpoint":   baseURL + RouteAuthLogout,
			"userinfo_endpoint":      baseURL + RouteMe,

			"response_types_supported":              []string{"token"},
			"subject_types_supported":               []string{"public"},
			"id_token_signing_alg_values_supported": []string{"HS256"},
			"grant_types_supported":                 []string{"password", "refresh_token"},
			"token_endpoint_auth_methods_supported": []string{"none"},
			"claims_supported":                      []string{"sub", "iss", "iat", "exp", "jti", "roles"},
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		writeJSON(w, http.StatusOK, resp)
	}
}
