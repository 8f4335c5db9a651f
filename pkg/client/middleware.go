package client

import (
	"log/slog"
	"net/http"

	"github.com/tendant/idm-portal/pkg/role"
)

// RequireAuth returns 401 unless AuthUserMiddleware placed a user in the context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetAuthUser(r.Context()); !ok {
			slog.Debug("Unauthenticated request to protected resource")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission returns a middleware that checks whether the authenticated
// user's roles carry p.
// Returns 401 Unauthorized if not authenticated.
// Returns 403 Forbidden if authenticated but lacking the permission.
// Must be used after AuthUserMiddleware.
func RequirePermission(p role.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := GetAuthUser(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !authUser.HasPermission(p) {
				slog.Warn("User lacks required permission",
					"userId", authUser.UserId,
					"userRoles", authUser.Roles,
					"permission", p.String())
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
