package server

// Route path constants
const (
	// Session routes
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthLogout  = "/auth/logout"

	// Cart routes
	RouteCartTokenGenerate = "/cart/token/generate"

	// Operational routes
	RouteHealth = "/healthz"

	// Matches every path for CORS preflight
	RoutePreflight = "/{path...}"
)
