// Package aggregator is the HTTP client for the event-aggregator platform
// services: auth (sessions and tokens), event (events and categories) and
// user (registration).
package aggregator

import (
	"time"

	"github.com/eventhub/admin-console/session"
)

// Service path prefixes on the platform gateway.
const (
	authServicePrefix  = "/auth"
	eventServicePrefix = "/event"
	userServicePrefix  = "/user"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the new session. In cookie mode the token fields are
// absent from the body; the auth service sets httpOnly cookies instead.
type LoginResponse struct {
	SessionID            string       `json:"session_id,omitempty"`
	AccessToken          string       `json:"access_token,omitempty"`
	RefreshToken         string       `json:"refresh_token,omitempty"`
	AccessTokenExpiresAt time.Time    `json:"access_token_expires_at"`
	User                 session.User `json:"user"`
}

type LogoutRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type RefreshResponse struct {
	AccessToken          string    `json:"access_token,omitempty"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
}

// MeResponse reports the current identity in cookie mode, where the client
// cannot read it out of a token.
type MeResponse struct {
	User                 session.User `json:"user"`
	AccessTokenExpiresAt time.Time    `json:"access_token_expires_at"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Event is a published event on the platform.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventInput is the mutable part of an Event for create and update calls.
type EventInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Location    string  `json:"location"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Source      string  `json:"source,omitempty"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CategoryInput struct {
	Name string `json:"name"`
}
