package config

import "time"

type AuthConfig interface {
	GetCredentialTTL() time.Duration
}

type Auth struct{}

var _ AuthConfig = Auth{}

// GetCredentialTTL returns how long persisted credentials are kept.
func (Auth) GetCredentialTTL() time.Duration {
	d, err := time.ParseDuration(GetEnv("DOGSEEK_CREDENTIAL_TTL", "24h"))
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
