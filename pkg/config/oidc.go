package config

import "time"

// OIDCConfig configures the authorization server endpoints.
type OIDCConfig struct {
	Issuer                string        `env:"OIDC_ISSUER" env-default:"http://localhost:8080"`
	LoginURL              string        `env:"OIDC_LOGIN_URL" env-default:"/login"`
	PrivateKeyPath        string        `env:"OIDC_PRIVATE_KEY_PATH" env-default:"private.pem"`
	GlobalSecret          string        `env:"OIDC_GLOBAL_SECRET" env-default:"some-very-long-secret-at-least-32-characters"`
	AccessTokenLifespan   time.Duration `env:"OIDC_ACCESS_TOKEN_LIFESPAN" env-default:"1h"`
	RefreshTokenLifespan  time.Duration `env:"OIDC_REFRESH_TOKEN_LIFESPAN" env-default:"720h"`
	AuthorizeCodeLifespan time.Duration `env:"OIDC_AUTHORIZE_CODE_LIFESPAN" env-default:"10m"`
}

// JwtConfig is the portal's own login session token.
type JwtConfig struct {
	JwtSecret      string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer         string `env:"JWT_ISSUER" env-default:"idm-portal"`
	CookieHttpOnly bool   `env:"COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure   bool   `env:"COOKIE_SECURE" env-default:"false"`
}

// NewOIDCConfigFromEnv loads OIDCConfig from environment variables
func NewOIDCConfigFromEnv() OIDCConfig {
	return OIDCConfig{
		Issuer:                GetEnvOrDefault("OIDC_ISSUER", "http://localhost:8080"),
		LoginURL:              GetEnvOrDefault("OIDC_LOGIN_URL", "/login"),
		PrivateKeyPath:        GetEnvOrDefault("OIDC_PRIVATE_KEY_PATH", "private.pem"),
		GlobalSecret:          GetEnvOrDefault("OIDC_GLOBAL_SECRET", "some-very-long-secret-at-least-32-characters"),
		AccessTokenLifespan:   GetEnvDuration("OIDC_ACCESS_TOKEN_LIFESPAN", time.Hour),
		RefreshTokenLifespan:  GetEnvDuration("OIDC_REFRESH_TOKEN_LIFESPAN", 30*24*time.Hour),
		AuthorizeCodeLifespan: GetEnvDuration("OIDC_AUTHORIZE_CODE_LIFESPAN", 10*time.Minute),
	}
}

// NewJwtConfigFromEnv loads JwtConfig from environment variables
func NewJwtConfigFromEnv() JwtConfig {
	return JwtConfig{
		JwtSecret:      GetEnvOrDefault("JWT_SECRET", "very-secure-jwt-secret"),
		Issuer:         GetEnvOrDefault("JWT_ISSUER", "idm-portal"),
		CookieHttpOnly: GetEnvBool("COOKIE_HTTP_ONLY", true),
		CookieSecure:   GetEnvBool("COOKIE_SECURE", false),
	}
}
