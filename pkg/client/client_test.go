package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/idm-portal/pkg/role"
	"github.com/tendant/idm-portal/pkg/sessiontoken"
)

const testSecret = "test-jwt-secret-key"

func newTestRouter(p role.Permission) http.Handler {
	tokenAuth := jwtauth.New("HS256", []byte(testSecret), nil)
	r := chi.NewRouter()
	r.Use(Verifier(tokenAuth))
	r.Use(AuthUserMiddleware)
	r.With(RequirePermission(p)).Get("/", func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetAuthUser(r.Context())
		w.Write([]byte(u.UserId))
	})
	return r
}

func tokenFor(t *testing.T, roles ...string) string {
	t.Helper()
	g := sessiontoken.NewGenerator(testSecret, "idm-portal", time.Hour)
	token, _, err := g.Generate(sessiontoken.Subject{UserID: "user-1", Name: "User", Email: "u@example.com", Roles: roles})
	require.NoError(t, err)
	return token
}

func TestRequirePermission(t *testing.T) {
	router := newTestRouter(role.PermissionAdmin)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{
			name:   "NoToken",
			setup:  func(r *http.Request) {},
			status: http.StatusUnauthorized,
		},
		{
			name: "BearerAdmin",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+tokenFor(t, "IT"))
			},
			status: http.StatusOK,
		},
		{
			name: "CookieAdmin",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: ACCESS_TOKEN_NAME, Value: tokenFor(t, "dev")})
			},
			status: http.StatusOK,
		},
		{
			name: "NotAdmin",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+tokenFor(t, "Driver"))
			},
			status: http.StatusForbidden,
		},
		{
			name: "WrongSecret",
			setup: func(r *http.Request) {
				g := sessiontoken.NewGenerator("other", "idm-portal", time.Hour)
				token, _, _ := g.Generate(sessiontoken.Subject{UserID: "user-1", Roles: []string{"Dev"}})
				r.Header.Set("Authorization", "Bearer "+token)
			},
			status: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user-1", w.Body.String())
			}
		})
	}
}

func TestUserFromClaims(t *testing.T) {
	u, err := UserFromClaims(map[string]interface{}{
		"sub":   "user-1",
		"name":  "User",
		"email": "u@example.com",
		"roles": []interface{}{"Files", "Unknown"},
	})
	require.NoError(t, err)
	assert.Equal(t, "User", u.DisplayName)
	assert.Equal(t, []role.AppRole{role.Files}, u.AppRoles())
	assert.True(t, u.HasPermission(role.PermissionJudgebookFiles))
	assert.False(t, u.HasPermission(role.PermissionAdmin))

	_, err = UserFromClaims(map[string]interface{}{"name": "anonymous"})
	assert.Error(t, err)

	_, err = UserFromClaims(nil)
	assert.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithAuthUser(req.Context(), &AuthUser{UserId: "user-1"}))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
