package config

import (
	"log"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	UpstreamConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetDataFolder() string
}

// UpstreamConfig describes how to reach the aggregator platform services.
type UpstreamConfig interface {
	GetAPIBaseURL() string
	GetAuthMode() AuthMode
	GetHTTPTimeout() time.Duration
}

// SessionConfig controls local session persistence and refresh behaviour.
type SessionConfig interface {
	GetSessionDBPath() string
	GetSessionPassphrase() string
	GetRefreshLeadTime() time.Duration
	ClearSessionOnNetworkError() bool
}

var once sync.Once

type mainConfig struct {
	EnvVars
	Upstream
	Session
}

func New() Config {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	})
	return mainConfig{}
}
