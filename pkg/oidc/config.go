package oidc

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the authorization server settings.
type Config struct {
	// Issuer is the public base URL of the portal.
	Issuer string
	// LoginURL receives users without a portal session, with the original
	// authorize request in the redirect parameter.
	LoginURL string
	// GlobalSecret signs opaque tokens and must be at least 32 bytes.
	GlobalSecret string

	AccessTokenLifespan   time.Duration
	RefreshTokenLifespan  time.Duration
	AuthorizeCodeLifespan time.Duration
	IDTokenLifespan       time.Duration

	SendDebugMessagesToClients bool
}

func DefaultConfig() Config {
	return Config{
		Issuer:                "http://localhost:8080",
		LoginURL:              "/login",
		GlobalSecret:          "some-very-long-secret-at-least-32-characters",
		AccessTokenLifespan:   time.Hour,
		RefreshTokenLifespan:  30 * 24 * time.Hour,
		AuthorizeCodeLifespan: 10 * time.Minute,
		IDTokenLifespan:       time.Hour,
	}
}

func (c Config) Validate() error {
	if len(c.GlobalSecret) < 32 {
		return fmt.Errorf("global secret must be at least 32 bytes, got %d", len(c.GlobalSecret))
	}
	if c.LoginURL == "" {
		return fmt.Errorf("login_url is required")
	}
	if _, err := url.Parse(c.LoginURL); err != nil {
		return fmt.Errorf("invalid login_url: %w", err)
	}
	if c.Issuer == "" {
		return fmt.Errorf("issuer is required")
	}
	if c.AccessTokenLifespan <= 0 || c.AuthorizeCodeLifespan <= 0 {
		return fmt.Errorf("token lifespans must be positive")
	}
	return nil
}
