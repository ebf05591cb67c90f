package server

// Route path constants
// All console routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteLogin    = "/auth/login"
	RouteLogout   = "/auth/logout"
	RouteRegister = "/auth/register"

	// Dashboard Routes
	RouteDashboard = "/dashboard"
	RouteSettings  = "/dashboard/settings"

	// Event Routes
	RouteEvents      = "/dashboard/events"
	RouteEventNew    = "/dashboard/events/new"
	RouteEvent       = "/dashboard/events/{id}"
	RouteEventEdit   = "/dashboard/events/{id}/edit"
	RouteEventDelete = "/dashboard/events/{id}/delete"

	// Category Routes
	RouteCategories     = "/dashboard/categories"
	RouteCategoryNew    = "/dashboard/categories/new"
	RouteCategory       = "/dashboard/categories/{id}"
	RouteCategoryEdit   = "/dashboard/categories/{id}/edit"
	RouteCategoryDelete = "/dashboard/categories/{id}/delete"
)
