package server

// Route paths for the public API surface.
const (
	RouteRegisterOrganization = "/auth/register-organization"
	RouteLogin                = "/auth/login"
	RouteRefresh              = "/auth/refresh"
	RouteLogout               = "/auth/logout"
	RouteMe                   = "/me"
	RouteHealth               = "/health"
	RouteHealthInternal       = "/_health"
)

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteFunc("POST "+RouteRegisterOrganization, ChainMiddleware(s.RegisterOrganizationHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// Protected routes (require a valid bearer access token)
	s.RegisterRouteFunc("GET "+RouteMe, ChainMiddleware(s.MeHandler(), append(s.APIMiddleware(), s.RequireAuth())...))

	// Health
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteFunc("GET "+RouteHealthInternal, s.InternalHealthHandler())
}
