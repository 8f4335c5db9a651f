// Package client resolves the signed-in portal user from a verified session
// token and guards handlers by permission.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/tendant/idm-portal/pkg/role"
)

type AuthUser struct {
	UserId      string   `json:"sub,omitempty"`
	DisplayName string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

func (i AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", i.UserId),
		slog.Any("roles", i.Roles),
	)
}

// AppRoles returns the catalogue roles named in the token.
func (i AuthUser) AppRoles() []role.AppRole {
	return role.ParseAppRoles(i.Roles)
}

func (i AuthUser) HasPermission(p role.Permission) bool {
	return role.HasPermission(i.AppRoles(), p)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "portal context value " + k.name
}

const ACCESS_TOKEN_NAME = "access_token"

var AuthUserKey = &contextKey{"AuthUser"}

func LoadFromMap[T any](m map[string]interface{}, c *T) error {
	data, err := json.Marshal(m)
	if err == nil {
		err = json.Unmarshal(data, c)
	}
	return err
}

// UserFromClaims builds an AuthUser from verified token claims.
func UserFromClaims(claims map[string]interface{}) (*AuthUser, error) {
	if claims == nil {
		return nil, fmt.Errorf("missing JWT claims")
	}
	authUser := new(AuthUser)
	if err := LoadFromMap(claims, authUser); err != nil {
		return nil, fmt.Errorf("invalid token claims: %w", err)
	}
	if authUser.UserId == "" {
		return nil, fmt.Errorf("missing user ID in token")
	}
	return authUser, nil
}

// UserFromRequest returns the session user verified by Verifier, if any.
func UserFromRequest(r *http.Request) (*AuthUser, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return nil, err
	}
	return UserFromClaims(claims)
}

// AuthUserMiddleware rejects requests without a valid session and stores
// the AuthUser in the request context.
func AuthUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authUser, err := UserFromRequest(r)
		if err != nil {
			http.Error(w, fmt.Sprintf("missing or invalid JWT: %v", err), http.StatusUnauthorized)
			return
		}

		slog.Debug("authenticated user", "userId", authUser.UserId, "roles", authUser.Roles)
		next.ServeHTTP(w, r.WithContext(WithAuthUser(r.Context(), authUser)))
	})
}

func WithAuthUser(ctx context.Context, u *AuthUser) context.Context {
	return context.WithValue(ctx, AuthUserKey, u)
}

func GetAuthUser(ctx context.Context) (*AuthUser, bool) {
	u, ok := ctx.Value(AuthUserKey).(*AuthUser)
	return u, ok && u != nil
}

// Verifier looks for the session token in the Authorization header and
// then in the access_token cookie.
func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Verify(ja, jwtauth.TokenFromHeader, TokenFromCookie)(next)
	}
}

func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(ACCESS_TOKEN_NAME)
	if err != nil {
		return ""
	}
	return cookie.Value
}
