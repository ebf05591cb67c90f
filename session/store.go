package session

import "context"

// Storage keys mirror what the platform's browser dashboard keeps in
// localStorage, so dumps of either store read the same way.
const (
	keyAccessToken  = "accessToken"
	keyRefreshToken = "refreshToken"
	keyUser         = "user"
	keySessionID    = "sessionId"
	keyTokenExpiry  = "tokenExpiry" // epoch milliseconds, stored as a string
)

// Store persists the session between console runs.
//
// Save writes all session fields so that no reader observes a partial
// session. Load returns (nil, nil) when no complete session is stored;
// missing or partial fields are treated as an absent session, never as an
// error. Clear removes all fields and is a no-op on an empty store.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error
}
