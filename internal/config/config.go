package config

import "github.com/joho/godotenv"

type Config interface {
	EnvConfig
	AuthConfig
}

type mainConfig struct {
	EnvVars
	Auth
}

// New loads a .env file if one is present and returns the combined configuration.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
