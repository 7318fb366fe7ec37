package server

import (
	"encoding/json"
	"net/http"

	"github.com/medcore/medcore-server/auth"
	"github.com/medcore/medcore-server/token"
	"github.com/medcore/medcore-server/users"
	"github.com/pkg/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

type errorResponse struct {
	Message string            `json:"message"`
	Fields  []auth.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors to HTTP statuses with safe messages.
// Internal details are logged, never returned to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *auth.ValidationError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Validation error",
			Fields:  validationErr.Fields,
		})

	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Invalid credentials"})

	case errors.Is(err, token.ErrTokenExpired),
		errors.Is(err, token.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenReuse):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Invalid or expired token"})

	case errors.Is(err, auth.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Not found"})

	case errors.Is(err, auth.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Message: "Already exists"})

	case errors.Is(err, users.ErrCorruptCredential):
		// Data integrity problem: the stored hash for this record is
		// unusable. Fatal for the record, not for the process.
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("corrupt stored credential")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal Server Error"})

	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal Server Error"})
	}
}

// decodeJSON reads a JSON request body into dst. A syntactically invalid body
// is reported as a 400 by the caller.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
