// Package config provides the environment-driven configuration for idm-portal.
//
// Structs carry cleanenv tags so cmd/portal can load everything with
// cleanenv.ReadEnv. Each struct also has a NewXFromEnv constructor built on the
// GetEnv helpers for callers that do not use cleanenv.
//
//	cfg := config.NewCryptoConfigFromEnv()
//	if err := cfg.Validate(); err != nil {
//		// APP_KEY missing
//	}
package config
