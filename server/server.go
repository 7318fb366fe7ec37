package server

import (
	"net/http"

	"github.com/medcore/medcore-server/auth"
	"github.com/medcore/medcore-server/internal/config"
	"github.com/medcore/medcore-server/token"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Server wires the HTTP boundary to the auth service. Handlers decode and
// validate request bodies, invoke the service and map its errors to status
// codes; no business rule lives here.
type Server struct {
	mux     *http.ServeMux
	handler http.Handler
	config  *config.Config
	auth    *auth.Service
	tokens  *token.Service
	logger  zerolog.Logger
}

// New creates a Server. The token service is needed directly by the bearer
// guard; everything else goes through the auth service.
func New(cfg *config.Config, authService *auth.Service, tokens *token.Service, logger zerolog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[server.New] config is required")
	}
	if authService == nil {
		return nil, errors.New("[server.New] auth service is required")
	}
	if tokens == nil {
		return nil, errors.New("[server.New] token service is required")
	}

	s := &Server{
		mux:    http.NewServeMux(),
		config: cfg,
		auth:   authService,
		tokens: tokens,
		logger: logger,
	}

	s.initRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	s.handler = c.Handler(s.mux)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// RegisterRouteFunc mounts a handler on the mux using the "METHOD /path"
// pattern syntax.
func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.mux.HandleFunc(pattern, handler)
}
