package server

import (
	"net/http"

	"github.com/medcore/medcore-server/organizations"
	"github.com/medcore/medcore-server/users"
)

type meResponse struct {
	User         *users.User                 `json:"user"`
	Organization *organizations.Organization `json:"organization"`
}

// MeHandler handles GET /me. It resolves the identity injected by
// RequireAuth to fresh user and organization records; a valid token for a
// deactivated user or organization yields 404, never stale data.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, organizationID, _, ok := identityFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Missing authorization token"})
			return
		}

		user, org, err := s.auth.CurrentUser(r.Context(), userID, organizationID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, meResponse{User: user, Organization: org})
	}
}
