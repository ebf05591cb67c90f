package aggregator

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eventhub/admin-console/session"
)

// AuthClient talks to the auth service endpoints. It deliberately bypasses
// the authenticating transport: a refresh call must never trigger another
// refresh, and login happens before any credentials exist. In cookie mode it
// must share a cookie jar with the protected client.
type AuthClient struct {
	caller
}

func NewAuthClient(cfg Config, httpClient *http.Client, logger zerolog.Logger) *AuthClient {
	var doer httpDoer
	if httpClient != nil {
		doer = httpClient
	}
	return &AuthClient{caller: newCaller(cfg, doer, logger.With().Str("component", "aggregator-auth").Logger())}
}

// Login exchanges credentials for a session. Token fields are empty in
// cookie mode. The user and expiry normally come from the response body;
// when the auth service omits them they are read from the access token's
// own claims instead.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*session.Session, error) {
	var resp LoginResponse
	err := c.doJSON(ctx, http.MethodPost, authServicePrefix+"/api/v1/auth/login",
		LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	sess := &session.Session{
		ID:                   resp.SessionID,
		AccessToken:          resp.AccessToken,
		RefreshToken:         resp.RefreshToken,
		AccessTokenExpiresAt: resp.AccessTokenExpiresAt,
		User:                 resp.User,
	}

	if sess.AccessToken != "" && (sess.User.Email == "" || sess.AccessTokenExpiresAt.IsZero()) {
		claims, err := session.DecodeAccessToken(sess.AccessToken)
		if err != nil {
			return nil, err
		}
		if sess.User.Email == "" {
			sess.User = claims.User()
		}
		if sess.AccessTokenExpiresAt.IsZero() {
			sess.AccessTokenExpiresAt = claims.Exp
		}
	}
	return sess, nil
}

// Logout invalidates the session server-side.
func (c *AuthClient) Logout(ctx context.Context, sessionID string) error {
	return c.doJSON(ctx, http.MethodPost, authServicePrefix+"/api/v1/auth/logout",
		LogoutRequest{SessionID: sessionID}, nil)
}

// Refresh exchanges the refresh credential for a new access token. In cookie
// mode refreshToken is empty and the credential travels as a cookie. A
// missing expiry in the body falls back to the new token's exp claim.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var resp RefreshResponse
	err := c.doJSON(ctx, http.MethodPost, authServicePrefix+"/api/v1/auth/refresh",
		RefreshRequest{RefreshToken: refreshToken}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.AccessTokenExpiresAt.IsZero() && resp.AccessToken != "" {
		if claims, err := session.DecodeAccessToken(resp.AccessToken); err == nil {
			resp.AccessTokenExpiresAt = claims.Exp
		}
	}
	return &resp, nil
}

// Me reports the identity bound to the current cookies.
func (c *AuthClient) Me(ctx context.Context) (*MeResponse, error) {
	var resp MeResponse
	if err := c.doJSON(ctx, http.MethodGet, authServicePrefix+"/api/v1/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a platform account via the user service.
func (c *AuthClient) Register(ctx context.Context, req RegisterRequest) error {
	return c.doJSON(ctx, http.MethodPost, userServicePrefix+"/api/v1/users", req, nil)
}
