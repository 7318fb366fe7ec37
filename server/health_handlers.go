package server

import (
	"net/http"
)

// HealthHandler handles GET /health.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"app":    s.config.AppName,
			"status": "ok",
		})
	}
}

// InternalHealthHandler handles GET /_health, the minimal liveness probe.
func (s *Server) InternalHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
