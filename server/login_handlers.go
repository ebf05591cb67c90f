package server

import (
	"net/http"
	"net/url"

	"github.com/eventhub/admin-console/auth"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	pageData
	Email    string // Preserve email on error
	Redirect string // Path to return to after login
}

// LoginPageHandler displays the login page (GET /auth/login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			pageData: s.newPageData(r),
			Email:    r.URL.Query().Get("email"),
			Redirect: r.URL.Query().Get("redirect"),
		}
		if r.URL.Query().Get("reason") == "session_expired" {
			data.Error = "Your session has expired. Sign in again."
		}
		s.renderPage(w, "login.html", data)
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		redirect := sanitizeRedirect(r.FormValue("redirect"))

		if err := auth.ValidateCredentials(email, password); err != nil {
			s.renderLoginError(w, r, err.Error(), email, redirect)
			return
		}

		result := s.manager.Login(r.Context(), email, password)
		if !result.Success {
			s.renderLoginError(w, r, result.Error, email, redirect)
			return
		}

		http.Redirect(w, r, redirect, http.StatusSeeOther)
	}
}

// LogoutHandler ends the session (POST /auth/logout). The access token is
// revoked best-effort first; locally the operator is always signed out.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.manager.State().IsAuthenticated {
			if err := s.api.Revoke(r.Context()); err != nil {
				s.logger.Warn().Err(err).Msg("access token revocation failed")
			}
		}
		if err := s.manager.Logout(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("backend logout failed")
		}
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// renderLoginError redirects to the login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email, redirect string) {
	redirectURL := RouteLogin + "?error=" + url.QueryEscape(errorMsg)
	if email != "" {
		redirectURL += "&email=" + url.QueryEscape(email)
	}
	if redirect != "" && redirect != RouteDashboard {
		redirectURL += "&redirect=" + url.QueryEscape(redirect)
	}
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}

// sanitizeRedirect keeps post-login redirects on this site.
func sanitizeRedirect(redirect string) string {
	if redirect == "" || redirect[0] != '/' || (len(redirect) > 1 && redirect[1] == '/') {
		return RouteDashboard
	}
	return redirect
}
