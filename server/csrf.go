package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	csrfFormField = "csrf_token"
	csrfTokenTTL  = time.Hour
)

// csrfTokens issues one-time tokens for mutating forms. Tokens are minted
// when a form is rendered and consumed on submission.
type csrfTokens struct {
	lock   sync.Mutex
	issued map[string]time.Time
}

func newCSRFTokens() *csrfTokens {
	return &csrfTokens{issued: make(map[string]time.Time)}
}

func (c *csrfTokens) issue() string {
	c.lock.Lock()
	defer c.lock.Unlock()

	now := time.Now()
	for token, at := range c.issued {
		if now.Sub(at) > csrfTokenTTL {
			delete(c.issued, token)
		}
	}

	token := uuid.New().String()
	c.issued[token] = now
	return token
}

func (c *csrfTokens) consume(token string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	at, ok := c.issued[token]
	if !ok {
		return false
	}
	delete(c.issued, token)
	return time.Since(at) <= csrfTokenTTL
}

// RequireCSRF rejects form submissions whose token was not minted by this
// process or was already used.
func (s *Server) RequireCSRF() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form data", http.StatusBadRequest)
				return
			}
			if !s.csrf.consume(r.FormValue(csrfFormField)) {
				logError(r.Method, r.URL.Path, "invalid csrf token")
				http.Error(w, "403 - Invalid or expired form token", http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
}
