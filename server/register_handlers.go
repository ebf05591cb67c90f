package server

import (
	"net/http"
	"net/url"

	"github.com/eventhub/admin-console/aggregator"
	"github.com/eventhub/admin-console/auth"
)

// RegisterPageData contains data for rendering the registration page
type RegisterPageData struct {
	pageData
	Name  string // Preserve fields on error
	Email string
}

// RegisterPageHandler displays the registration page (GET /auth/register)
func (s *Server) RegisterPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := RegisterPageData{
			pageData: s.newPageData(r),
			Name:     r.URL.Query().Get("name"),
			Email:    r.URL.Query().Get("email"),
		}
		s.renderPage(w, "register.html", data)
	}
}

// RegisterSubmissionHandler creates a platform account and sends the
// operator to the login page to sign in with it.
func (s *Server) RegisterSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		name := r.FormValue("name")
		email := r.FormValue("email")
		password := r.FormValue("password")

		if err := auth.ValidateRegistration(name, email, password); err != nil {
			s.renderRegisterError(w, r, err.Error(), name, email)
			return
		}

		err := s.registrar.Register(r.Context(), aggregator.RegisterRequest{
			Name:     name,
			Email:    email,
			Password: password,
		})
		if err != nil {
			s.renderRegisterError(w, r, aggregator.ErrorMessage(err, "Registration failed. Try again."), name, email)
			return
		}

		redirectWithNotice(w, r, RouteLogin, "Account created. Sign in to continue.")
	}
}

func (s *Server) renderRegisterError(w http.ResponseWriter, r *http.Request, errorMsg, name, email string) {
	redirectURL := RouteRegister + "?error=" + url.QueryEscape(errorMsg)
	if name != "" {
		redirectURL += "&name=" + url.QueryEscape(name)
	}
	if email != "" {
		redirectURL += "&email=" + url.QueryEscape(email)
	}
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}
