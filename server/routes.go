package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", s.IndexHandler())

	// LOGIN / REGISTER
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleware(s.GuestOnly())...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleware(s.GuestOnly())...))
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterPageHandler(), s.HTMLMiddleware(s.GuestOnly())...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterSubmissionHandler(), s.HTMLMiddleware(s.GuestOnly())...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleware()...))

	// Dashboard routes (require an authenticated session)
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleware(s.RequireAuth())...))

	// Events
	s.RegisterRouteHandler("GET "+RouteEvents, ChainMiddleware(s.EventsListHandler(), s.HTMLMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteEventNew, ChainMiddleware(s.EventFormHandler(), s.HTMLMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteEvents, ChainMiddleware(s.EventCreateHandler(), s.HTMLMiddleware(s.RequireAuth(), s.RequireCSRF())...))
	s.RegisterRouteHandler("GET "+RouteEventEdit, ChainMiddleware(s.EventFormHandler(), s.HTMLMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteEvent, ChainMiddleware(s.EventUpdateHandler(), s.HTMLMiddleware(s.RequireAuth(), s.RequireCSRF())...))
	s.RegisterRouteHandler("POST "+RouteEventDelete, ChainMiddleware(s.EventDeleteHandler(), s.HTMLMiddleware(s.RequireAuth(), s.RequireCSRF())...))

	// Categories (admin only)
	s.RegisterRouteHandler("GET "+RouteCategories, ChainMiddleware(s.CategoriesListHandler(), s.HTMLMiddleware(s.RequireAdmin())...))
	s.RegisterRouteHandler("GET "+RouteCategoryNew, ChainMiddleware(s.CategoryFormHandler(), s.HTMLMiddleware(s.RequireAdmin())...))
	s.RegisterRouteHandler("POST "+RouteCategories, ChainMiddleware(s.CategoryCreateHandler(), s.HTMLMiddleware(s.RequireAdmin(), s.RequireCSRF())...))
	s.RegisterRouteHandler("GET "+RouteCategoryEdit, ChainMiddleware(s.CategoryFormHandler(), s.HTMLMiddleware(s.RequireAdmin())...))
	s.RegisterRouteHandler("POST "+RouteCategory, ChainMiddleware(s.CategoryUpdateHandler(), s.HTMLMiddleware(s.RequireAdmin(), s.RequireCSRF())...))
	s.RegisterRouteHandler("POST "+RouteCategoryDelete, ChainMiddleware(s.CategoryDeleteHandler(), s.HTMLMiddleware(s.RequireAdmin(), s.RequireCSRF())...))

	// Settings (admin only)
	s.RegisterRouteHandler("GET "+RouteSettings, ChainMiddleware(s.SettingsHandler(), s.HTMLMiddleware(s.RequireAdmin())...))
}
