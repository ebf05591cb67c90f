package server

import (
	"net/http"
	"net/url"

	"github.com/eventhub/admin-console/aggregator"
	"github.com/eventhub/admin-console/session"
)

const contentTypeHTML = "text/html; charset=utf-8"

// pageData is the common chrome every template receives.
type pageData struct {
	AppName string
	User    *session.User
	Error   string
	Notice  string
}

func (s *Server) newPageData(r *http.Request) pageData {
	state := s.manager.State()
	return pageData{
		AppName: s.config.GetAppName(),
		User:    state.User,
		Error:   r.URL.Query().Get("error"),
		Notice:  r.URL.Query().Get("notice"),
	}
}

// IndexHandler routes the root path to the dashboard or the login page.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.manager.State().IsAuthenticated {
			http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// redirectWithError reloads a page with a presentable error message.
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(errorMsg), http.StatusSeeOther)
}

// redirectWithNotice reloads a page with a confirmation message.
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	http.Redirect(w, r, path+"?notice="+url.QueryEscape(notice), http.StatusSeeOther)
}

// handleAPIError deals with a failed platform call. If the session died
// underneath the request, the operator goes back to the login page with the
// expiry reason; anything else reloads fallbackPath with the error attached.
func (s *Server) handleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackPath string) {
	if aggregator.IsAuthError(err) && !s.manager.State().IsAuthenticated {
		http.Redirect(w, r, RouteLogin+"?reason=session_expired", http.StatusSeeOther)
		return
	}
	logError(r.Method, r.URL.Path, err.Error())
	redirectWithError(w, r, fallbackPath, aggregator.ErrorMessage(err, "Something went wrong. Try again."))
}

func (s *Server) renderPage(w http.ResponseWriter, tmplName string, data any) {
	tmpl, err := ParseTemplate(tmplName)
	if err != nil {
		s.logger.Error().Err(err).Str("template", tmplName).Msg("failed to parse template")
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Str("template", tmplName).Msg("failed to render template")
	}
}
