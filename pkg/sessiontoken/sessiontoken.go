// Package sessiontoken issues and parses the HS256 tokens that identify a
// signed-in portal user.
package sessiontoken

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is where browsers carry the session token.
const CookieName = "access_token"

// Claims struct for JWT claims
type Claims struct {
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Subject identifies the user a token is minted for.
type Subject struct {
	UserID string
	Name   string
	Email  string
	Roles  []string
}

type Generator struct {
	secret []byte
	issuer string
	expiry time.Duration
}

func NewGenerator(secret, issuer string, expiry time.Duration) *Generator {
	return &Generator{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
	}
}

// Generate signs a token for sub and returns it with its expiry.
func (g *Generator) Generate(sub Subject) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(g.expiry)
	claims := Claims{
		Name:  sub.Name,
		Email: sub.Email,
		Roles: sub.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.UserID,
			Issuer:    g.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Minute)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature, issuer and lifetime.
func (g *Generator) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(g.issuer))
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	return claims, nil
}

// Cookie wraps a token for the browser.
func Cookie(token string, expires time.Time, httpOnly, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		Value:    token,
		Expires:  expires,
		HttpOnly: httpOnly,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
