package config

import (
	"path/filepath"
	"strconv"
	"time"
)

const (
	sessionDBVar         = "SESSION_DB"
	sessionPassphraseVar = "SESSION_PASSPHRASE"
	refreshLeadTimeVar   = "REFRESH_LEAD_TIME"
	clearOnNetErrVar     = "CLEAR_ON_NETWORK_ERROR"

	// Tokens expiring within this window are refreshed proactively during
	// initialization instead of waiting for a 401.
	defaultRefreshLeadTime = 5 * time.Minute
)

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionDBPath() string {
	path := GetEnv(sessionDBVar, "")
	if path != "" {
		return path
	}
	return filepath.Join(EnvVars{}.GetDataFolder(), "session.db")
}

// GetSessionPassphrase returns the passphrase used to seal token values at
// rest. Empty means tokens are stored in the clear.
func (Session) GetSessionPassphrase() string {
	return GetEnv(sessionPassphraseVar, "")
}

func (Session) GetRefreshLeadTime() time.Duration {
	return getDurationEnv(refreshLeadTimeVar, defaultRefreshLeadTime)
}

// ClearSessionOnNetworkError decides whether a refresh attempt that fails
// without an HTTP response tears the session down. Default keeps the session
// so a later retry can succeed.
func (Session) ClearSessionOnNetworkError() bool {
	v, err := strconv.ParseBool(GetEnv(clearOnNetErrVar, "false"))
	if err != nil {
		return false
	}
	return v
}
