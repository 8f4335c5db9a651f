package config

import "time"

// RateLimitConfig throttles the provider endpoints per client IP.
type RateLimitConfig struct {
	Enabled   bool          `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	Burst     int           `env:"RATE_LIMIT_BURST" env-default:"20"`
	PerSecond float64       `env:"RATE_LIMIT_PER_SECOND" env-default:"1"`
	BucketTTL time.Duration `env:"RATE_LIMIT_BUCKET_TTL" env-default:"1h"`
}
