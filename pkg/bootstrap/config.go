// Package bootstrap assembles the portal's services from configuration. Both
// cmd/portal and cmd/portalctl start from here.
package bootstrap

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/idm-portal/pkg/config"
)

type Config struct {
	Crypto    config.CryptoConfig
	Admin     config.AdminConfig
	Store     config.StoreConfig
	Database  config.DatabaseConfig
	Registry  config.RegistryConfig
	OIDC      config.OIDCConfig
	Jwt       config.JwtConfig
	RateLimit config.RateLimitConfig

	// Seed runs the seed on startup.
	Seed bool `env:"PORTAL_SEED" env-default:"true"`
}

// LoadConfig reads Config from the environment after applying any .env file.
func LoadConfig() (Config, error) {
	LoadEnvFile()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
