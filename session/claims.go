package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eventhub/admin-console/internal/errors"
)

// Claims is the subset of access-token claims the console cares about.
// The token is minted and signed by the auth service; the console never
// verifies signatures, it only reads the embedded identity and expiry.
type Claims struct {
	UserID  int64
	Email   string
	IsAdmin bool
	Subject string
	Exp     time.Time
	Iat     time.Time
	JTI     string
}

// DecodeAccessToken parses an access token without signature verification
// and extracts the console-relevant claims.
func DecodeAccessToken(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.ErrInvalidToken
	}

	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "parse access token: %v", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "extract claims")
	}

	id, _ := mapClaims["id"].(float64)
	email, _ := mapClaims["email"].(string)
	isAdmin, _ := mapClaims["is_admin"].(bool)
	sub, _ := mapClaims["sub"].(string)
	exp, _ := mapClaims["exp"].(float64)
	iat, _ := mapClaims["iat"].(float64)
	jti, _ := mapClaims["jti"].(string)

	if email == "" {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "missing email claim")
	}

	claims := &Claims{
		UserID:  int64(id),
		Email:   email,
		IsAdmin: isAdmin,
		Subject: sub,
		JTI:     jti,
	}
	if exp > 0 {
		claims.Exp = time.Unix(int64(exp), 0)
	}
	if iat > 0 {
		claims.Iat = time.Unix(int64(iat), 0)
	}
	return claims, nil
}

// User derives the display identity from the claims. The token carries no
// separate name field, so the local part of the email stands in for it.
func (c *Claims) User() User {
	name := c.Email
	if at := strings.Index(c.Email, "@"); at > 0 {
		name = c.Email[:at]
	}
	return User{
		Name:    name,
		Email:   c.Email,
		IsAdmin: c.IsAdmin,
	}
}

// Expired reports whether the token expiry has passed.
func (c *Claims) Expired(now time.Time) bool {
	return !c.Exp.IsZero() && !c.Exp.After(now)
}
