package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthLogin   = "/auth/login"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthLogout  = "/auth/logout"

	// OIDC discovery
	RouteWellKnownOpenIDConfig = "/.well-known/openid-configuration"

	// Resource Routes
	RouteMe                    = "/me"
	RouteRestaurants           = "/restaurants"
	RouteRestaurant            = "/restaurants/{id}"
	RouteRestaurantActive      = "/restaurants/{id}/active"
	RouteRestaurantShareAccess = "/restaurants/{id}/credentials/share"
	RouteCoupons               = "/coupons"
	RouteBugReports            = "/bug-reports"
	RouteBugReport             = "/bug-reports/{id}"
	RouteBanners               = "/banners"
	RouteBanner                = "/banners/{id}"
	RouteLocations             = "/locations"
)

