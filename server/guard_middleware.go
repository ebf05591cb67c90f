package server

import (
	"net/http"

	"github.com/eventhub/admin-console/auth"
)

// guardMiddleware applies a navigation guard to every request on a route.
// Guards only read an auth state snapshot; redirects carry the attempted
// path so the operator lands back where they were heading after login.
func (s *Server) guardMiddleware(guard auth.Guard) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			decision := guard(s.manager.State(), r.URL.Path)
			switch decision.Verdict {
			case auth.VerdictWait:
				// Auth state is still being restored; ask the browser to retry
				// rather than flashing the wrong page.
				w.Header().Set("Retry-After", "1")
				http.Error(w, "503 - Initializing", http.StatusServiceUnavailable)
			case auth.VerdictRedirect:
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
			default:
				next(w, r)
			}
		}
	}
}

// RequireAuth guards routes that need an authenticated session.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return s.guardMiddleware(auth.RequireAuth)
}

// RequireAdmin guards routes that need an admin session.
func (s *Server) RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return s.guardMiddleware(auth.RequireAdmin)
}

// GuestOnly guards the login and register pages; an authenticated operator
// is bounced to the dashboard.
func (s *Server) GuestOnly() func(http.HandlerFunc) http.HandlerFunc {
	return s.guardMiddleware(auth.GuestOnly)
}
