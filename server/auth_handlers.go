package server

import (
	"net/http"

	"github.com/medcore/medcore-server/auth"
	"github.com/medcore/medcore-server/token"
	"github.com/pkg/errors"
)

// RegisterOrganizationHandler handles POST /auth/register-organization.
func (s *Server) RegisterOrganizationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input auth.RegisterOrganizationInput
		if err := decodeJSON(r, &input); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
			return
		}

		result, err := s.auth.RegisterOrganization(r.Context(), input)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, result)
	}
}

// LoginHandler handles POST /auth/login.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input auth.LoginInput
		if err := decodeJSON(r, &input); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
			return
		}

		result, err := s.auth.Login(r.Context(), input)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// RefreshHandler handles POST /auth/refresh.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input auth.RefreshInput
		if err := decodeJSON(r, &input); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
			return
		}
		if err := input.Validate(); err != nil {
			s.writeError(w, r, err)
			return
		}

		tokens, err := s.auth.Refresh(r.Context(), input.RefreshToken)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"tokens": tokens})
	}
}

// LogoutHandler handles POST /auth/logout. Logout is idempotent; revoking an
// unknown or already revoked token still returns ok.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input auth.RefreshInput
		if err := decodeJSON(r, &input); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
			return
		}
		if err := input.Validate(); err != nil {
			s.writeError(w, r, err)
			return
		}

		if err := s.auth.Logout(r.Context(), input.RefreshToken); err != nil {
			if errors.Is(err, token.ErrTokenInvalid) {
				// Malformed token is a bad request here, not an auth
				// failure: logout never discloses token state.
				writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid refresh token"})
				return
			}
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
