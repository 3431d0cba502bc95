package config

import "github.com/ilyakaznacheev/cleanenv"

// envConfig maps environment variables onto the runtime Config. Secrets are
// expected to arrive through the environment in production.
type envConfig struct {
	EndpointAddr       string `env:"ADDRESS"`
	DatabaseDSN        string `env:"DATABASE_DSN"`
	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET"`
}

// parseEnv overlays Config with values from the environment. Unset
// variables leave the current values untouched.
func parseEnv(config *Config) error {
	e := &envConfig{}
	if err := cleanenv.ReadEnv(e); err != nil {
		return err
	}

	if e.EndpointAddr != "" {
		config.EndpointAddr = e.EndpointAddr
	}
	if e.DatabaseDSN != "" {
		config.DatabaseDSN = e.DatabaseDSN
	}
	if e.AccessTokenSecret != "" {
		config.AccessTokenSecret = e.AccessTokenSecret
	}
	if e.RefreshTokenSecret != "" {
		config.RefreshTokenSecret = e.RefreshTokenSecret
	}
	return nil
}
