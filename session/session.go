// Package session holds the authenticated session of the console operator:
// the credential bundle returned by the aggregator's auth service and the
// stores that persist it between runs.
package session

import (
	"strings"
	"time"
)

// User is the operator identity embedded in the session.
type User struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Session is the bundle of credentials and identity representing one
// authenticated console instance.
type Session struct {
	ID                   string
	AccessToken          string
	RefreshToken         string
	AccessTokenExpiresAt time.Time
	User                 User
}

// Expired reports whether the access token expiry has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.AccessTokenExpiresAt.After(now)
}

// ExpiresWithin reports whether the access token expires before now+lead.
// Sessions in this window should be refreshed before being used.
func (s *Session) ExpiresWithin(lead time.Duration, now time.Time) bool {
	return s.AccessTokenExpiresAt.Before(now.Add(lead))
}

// DisplayName returns the user's name, falling back to the local part of the
// email address.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}
