package config

// RegistryConfig selects the application registry backend.
// With an empty RedisAddr the registry is kept in memory.
type RegistryConfig struct {
	RedisAddr     string `env:"REGISTRY_REDIS_ADDR"`
	RedisPassword string `env:"REGISTRY_REDIS_PASSWORD"`
	RedisDB       int    `env:"REGISTRY_REDIS_DB" env-default:"0"`
	KeyPrefix     string `env:"REGISTRY_KEY_PREFIX" env-default:"portal:registry:"`
}

// NewRegistryConfigFromEnv loads RegistryConfig from environment variables
func NewRegistryConfigFromEnv() RegistryConfig {
	return RegistryConfig{
		RedisAddr:     GetEnv("REGISTRY_REDIS_ADDR"),
		RedisPassword: GetEnv("REGISTRY_REDIS_PASSWORD"),
		RedisDB:       GetEnvInt("REGISTRY_REDIS_DB", 0),
		KeyPrefix:     GetEnvOrDefault("REGISTRY_KEY_PREFIX", "portal:registry:"),
	}
}

// UseRedis reports whether a Redis address was configured.
func (c RegistryConfig) UseRedis() bool {
	return c.RedisAddr != ""
}
