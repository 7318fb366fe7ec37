package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/medcore/medcore-server/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID stores the authenticated user ID
	ContextKeyUserID ContextKey = "user_id"
	// ContextKeyOrganizationID stores the user's organization ID
	ContextKeyOrganizationID ContextKey = "organization_id"
	// ContextKeyRole stores the user's role within the organization
	ContextKeyRole ContextKey = "role"
)

// RequireAuth is middleware that validates a Bearer access token and injects
// the authenticated identity into the request context. On any failure it
// responds 401 and the handler never runs.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Missing authorization token"})
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Missing authorization token"})
				return
			}

			claims, err := s.tokens.VerifyAccessToken(parts[1])
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Invalid or expired token"})
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyOrganizationID, claims.OrganizationID)
			ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)

			next(w, r.WithContext(ctx))
		}
	}
}

// identityFromContext returns the identity injected by RequireAuth.
func identityFromContext(ctx context.Context) (userID, organizationID string, role users.RoleType, ok bool) {
	userID, uok := ctx.Value(ContextKeyUserID).(string)
	organizationID, ook := ctx.Value(ContextKeyOrganizationID).(string)
	role, _ = ctx.Value(ContextKeyRole).(users.RoleType)
	return userID, organizationID, role, uok && ook
}
