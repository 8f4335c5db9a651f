package config

import "fmt"

// AdminConfig is the bootstrap identity created by the seed.
type AdminConfig struct {
	Email string `env:"ADMIN_EMAIL"`
	Phone string `env:"ADMIN_PHONE"`
	Name  string `env:"ADMIN_NAME"`
}

// NewAdminConfigFromEnv loads AdminConfig from ADMIN_EMAIL, ADMIN_PHONE and ADMIN_NAME.
func NewAdminConfigFromEnv() AdminConfig {
	return AdminConfig{
		Email: GetEnv("ADMIN_EMAIL"),
		Phone: GetEnv("ADMIN_PHONE"),
		Name:  GetEnv("ADMIN_NAME"),
	}
}

// Validate requires every field; seeding must not start without them.
func (c AdminConfig) Validate() error {
	if c.Email == "" || c.Phone == "" {
		return fmt.Errorf("failed to seed: empty admin email/phone")
	}
	if c.Name == "" {
		return fmt.Errorf("failed to seed: empty admin name")
	}
	return nil
}
