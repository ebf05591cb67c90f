package server

import (
	"net/http"

	"github.com/eventhub/admin-console/aggregator"
)

// DashboardPageData contains data for rendering the dashboard overview
type DashboardPageData struct {
	pageData
	EventCount    int
	CategoryCount int
	RecentEvents  []aggregator.Event
}

// DashboardHandler renders the overview page (GET /dashboard)
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := s.api.ListEvents(r.Context())
		if err != nil {
			s.handleAPIError(w, r, err, RouteDashboard)
			return
		}
		categories, err := s.api.ListCategories(r.Context())
		if err != nil {
			s.handleAPIError(w, r, err, RouteDashboard)
			return
		}

		recent := events
		if len(recent) > 5 {
			recent = recent[:5]
		}

		s.renderPage(w, "dashboard.html", DashboardPageData{
			pageData:      s.newPageData(r),
			EventCount:    len(events),
			CategoryCount: len(categories),
			RecentEvents:  recent,
		})
	}
}

// SettingsPageData contains data for rendering the settings page
type SettingsPageData struct {
	pageData
	APIBaseURL string
	AuthMode   string
	Env        string
}

// SettingsHandler renders the settings page (GET /dashboard/settings)
func (s *Server) SettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, "settings.html", SettingsPageData{
			pageData:   s.newPageData(r),
			APIBaseURL: s.config.GetAPIBaseURL(),
			AuthMode:   string(s.config.GetAuthMode()),
			Env:        s.env,
		})
	}
}
