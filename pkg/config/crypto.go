package config

import "fmt"

// CryptoConfig carries the application-wide key used to protect client secrets at rest.
type CryptoConfig struct {
	AppKey string `env:"APP_KEY"`
}

// NewCryptoConfigFromEnv loads CryptoConfig from APP_KEY.
func NewCryptoConfigFromEnv() CryptoConfig {
	return CryptoConfig{
		AppKey: GetEnv("APP_KEY"),
	}
}

// Validate fails when no key is configured.
func (c CryptoConfig) Validate() error {
	if c.AppKey == "" {
		return fmt.Errorf("APP_KEY is required")
	}
	return nil
}
