package config

import (
	"time"
)

// AuthMode selects how credentials travel to the aggregator API.
type AuthMode string

const (
	// AuthModeBearer sends the access token in the Authorization header and
	// persists tokens in the local session store.
	AuthModeBearer AuthMode = "bearer"
	// AuthModeCookie relies on httpOnly cookies set by the auth service; the
	// client keeps them in a cookie jar and never sees token values.
	AuthModeCookie AuthMode = "cookie"
)

const (
	apiBaseURLVar  = "API_BASE_URL"
	authModeVar    = "AUTH_MODE"
	httpTimeoutVar = "HTTP_TIMEOUT"

	defaultHTTPTimeout = 30 * time.Second
)

type Upstream struct{}

var _ UpstreamConfig = Upstream{}

// GetAPIBaseURL returns the base URL of the aggregator platform, without a
// trailing slash. Service prefixes (/auth, /event, /user) are appended by the
// API client.
func (Upstream) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080")
}

func (Upstream) GetAuthMode() AuthMode {
	mode := AuthMode(GetEnv(authModeVar, string(AuthModeBearer)))
	if mode != AuthModeBearer && mode != AuthModeCookie {
		return AuthModeBearer
	}
	return mode
}

func (Upstream) GetHTTPTimeout() time.Duration {
	return getDurationEnv(httpTimeoutVar, defaultHTTPTimeout)
}

func getDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
