package server

func (s *Server) initRoutes() {
	// Authentication
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteWellKnownOpenIDConfig, ChainMiddleware(s.WellKnownOpenIDConfig(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.ProtectedMiddleware()...))

	// Dashboard resources (super admin only)
	admin := s.ProtectedMiddleware(s.RequireSuperAdmin())

	s.RegisterRouteHandler("GET "+RouteRestaurants, ChainMiddleware(s.ListRestaurantsHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteRestaurants, ChainMiddleware(s.CreateRestaurantHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteRestaurant, ChainMiddleware(s.GetRestaurantHandler(), admin...))
	s.RegisterRouteHandler("PUT "+RouteRestaurant, ChainMiddleware(s.UpdateRestaurantHandler(), admin...))
	s.RegisterRouteHandler("DELETE "+RouteRestaurant, ChainMiddleware(s.DeleteRestaurantHandler(), admin...))
	s.RegisterRouteHandler("PUT "+RouteRestaurantActive, ChainMiddleware(s.SetRestaurantActiveHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteRestaurantShareAccess, ChainMiddleware(s.ShareCredentialsHandler(), admin...))

	s.RegisterRouteHandler("GET "+RouteCoupons, ChainMiddleware(s.ListCouponsHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteCoupons, ChainMiddleware(s.CreateCouponHandler(), admin...))

	s.RegisterRouteHandler("GET "+RouteBugReports, ChainMiddleware(s.ListBugReportsHandler(), admin...))
	s.RegisterRouteHandler("PATCH "+RouteBugReport, ChainMiddleware(s.UpdateBugReportHandler(), admin...))

	s.RegisterRouteHandler("GET "+RouteBanners, ChainMiddleware(s.ListBannersHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteBanners, ChainMiddleware(s.UploadBannerHandler(), admin...))
	s.RegisterRouteHandler("DELETE "+RouteBanner, ChainMiddleware(s.DeleteBannerHandler(), admin...))

	s.RegisterRouteHandler("GET "+RouteLocations, ChainMiddleware(s.LookupLocationsHandler(), admin...))
}
