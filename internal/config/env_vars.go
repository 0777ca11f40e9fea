package config

import (
	"os"
	"time"
)

const (
	baseURLVar  = "DOGSEEK_BASE_URL"
	timeoutVar  = "DOGSEEK_HTTP_TIMEOUT"
	credFileVar = "DOGSEEK_CREDENTIALS_FILE"
)

type EnvConfig interface {
	GetBaseURL() string
	GetHTTPTimeout() time.Duration
	GetCredentialsFile() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetBaseURL returns the registry backend base URL (e.g. "https://api.dogseek.example")
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

// GetHTTPTimeout returns the network timeout applied to backend calls.
func (EnvVars) GetHTTPTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv(timeoutVar, "10s"))
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetCredentialsFile returns the path of the persisted credential store.
// Empty means credentials are kept in memory only.
func (EnvVars) GetCredentialsFile() string {
	return GetEnv(credFileVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
