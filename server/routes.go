package server

import (
	"net/http"
)

func (s *Server) initRoutes() {
	// Session
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.TokenMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.TokenMiddleware()...))

	// Cart
	s.RegisterRouteHandler("POST "+RouteCartTokenGenerate, ChainMiddleware(s.CartTokenHandler(), s.TokenMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RoutePreflight, ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))
}
