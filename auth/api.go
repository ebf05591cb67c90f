// Package auth implements the console's session lifecycle against the
// aggregator auth service: single-flight token refresh, the authenticating
// HTTP transport with one-shot 401 retry, session-expiry broadcasting, the
// auth manager holding process-wide state, and the navigation guards.
package auth

import (
	"context"

	"github.com/eventhub/admin-console/aggregator"
	"github.com/eventhub/admin-console/session"
)

// BackendAPI is the slice of the auth service the session lifecycle needs.
// Implemented by *aggregator.AuthClient; faked in tests.
type BackendAPI interface {
	Login(ctx context.Context, email, password string) (*session.Session, error)
	Logout(ctx context.Context, sessionID string) error
	Refresh(ctx context.Context, refreshToken string) (*aggregator.RefreshResponse, error)
	Me(ctx context.Context) (*aggregator.MeResponse, error)
}

var _ BackendAPI = (*aggregator.AuthClient)(nil)
