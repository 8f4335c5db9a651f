package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/idm-portal/pkg/app"
	"github.com/tendant/idm-portal/pkg/client"
	"github.com/tendant/idm-portal/pkg/crypto"
	"github.com/tendant/idm-portal/pkg/registry"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router http.Handler
	user   *client.AuthUser
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cipher, err := crypto.New("test-app-key")
	require.NoError(t, err)
	svc := app.NewService(app.NewMemoryStore(), registry.NewMemoryRegistry(registry.WithHashCost(bcrypt.MinCost)), cipher)
	h := NewHandle(svc, WithSource("portal"))

	ts := &testServer{user: &client.AuthUser{UserId: "admin-1", Roles: []string{"Dev"}}}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ts.user != nil {
				r = r.WithContext(client.WithAuthUser(r.Context(), ts.user))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Mount("/api/apps", Handler(h))
	r.Get("/api/me/apps", MyAppsHandler(h))
	ts.router = r
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (ts *testServer) createApi(t *testing.T, clientID string) AppView {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/apps/api", AppRequest{Name: clientID, ClientID: clientID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[AppView](t, w)
}

func (ts *testServer) createSpa(t *testing.T, req AppRequest) AppView {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/apps/spa", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[AppView](t, w)
}

func TestCreateApiRevealsSecret(t *testing.T) {
	ts := newTestServer(t)
	api := ts.createApi(t, "identity-api")

	assert.Equal(t, "Api", api.Type)
	assert.NotEmpty(t, api.ClientSecret)
	assert.True(t, api.Active)
	assert.Equal(t, "admin-1", api.CreatedBy)

	w := ts.do(t, http.MethodGet, fmt.Sprintf("/api/apps/%d/validate-secret", api.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[ValidateSecretResponse](t, w).Valid)
}

func TestCreateSpaWithApis(t *testing.T) {
	ts := newTestServer(t)
	api := ts.createApi(t, "identity-api")
	ts.createApi(t, "other-api")

	spa := ts.createSpa(t, AppRequest{
		Name:     "Identity Web",
		URL:      "http://localhost:5112",
		ClientID: "identity-web",
		Roles:    []string{"clerk"},
		Apis:     []string{"identity-api"},
	})
	assert.Equal(t, "Spa", spa.Type)
	assert.Empty(t, spa.ClientSecret)
	assert.Equal(t, []string{"Clerk"}, spa.Roles)
	assert.Equal(t, []string{"書記官"}, spa.RoleTitles)

	w := ts.do(t, http.MethodGet, fmt.Sprintf("/api/apps/%d/apis", spa.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	apis := decode[[]AppView](t, w)
	require.Len(t, apis, 1)
	assert.Equal(t, api.ID, apis[0].ID)
	assert.Empty(t, apis[0].ClientSecret)
}

func TestCreateValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.createApi(t, "identity-api")

	tests := []struct {
		name   string
		path   string
		body   AppRequest
		status int
		code   string
		field  string
	}{
		{"MissingURL", "/api/apps/spa", AppRequest{Name: "x", ClientID: "x"}, http.StatusBadRequest, "VALIDATION_FAILED", "url"},
		{"RelativeURL", "/api/apps/spa", AppRequest{Name: "x", ClientID: "x", URL: "/x"}, http.StatusBadRequest, "VALIDATION_FAILED", "url"},
		{"MissingClientID", "/api/apps/api", AppRequest{Name: "x"}, http.StatusBadRequest, "VALIDATION_FAILED", "client_id"},
		{"MissingName", "/api/apps/api", AppRequest{ClientID: "x"}, http.StatusBadRequest, "VALIDATION_FAILED", "name"},
		{"UnknownRole", "/api/apps/spa", AppRequest{Name: "x", ClientID: "x", URL: "http://x", Roles: []string{"Janitor"}}, http.StatusBadRequest, "VALIDATION_FAILED", "roles"},
		{"UnknownApi", "/api/apps/spa", AppRequest{Name: "x", ClientID: "x", URL: "http://x", Apis: []string{"nope"}}, http.StatusBadRequest, "VALIDATION_FAILED", "apis"},
		{"DuplicateClientID", "/api/apps/api", AppRequest{Name: "x", ClientID: "identity-api"}, http.StatusBadRequest, "DUPLICATE_CLIENT_ID", "client_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, tt.code, resp.Code)
			assert.Contains(t, resp.Details, tt.field)
		})
	}
}

func TestListByType(t *testing.T) {
	ts := newTestServer(t)
	ts.createApi(t, "identity-api")
	ts.createSpa(t, AppRequest{Name: "Web", URL: "http://w/", ClientID: "web"})

	w := ts.do(t, http.MethodGet, "/api/apps/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]AppView](t, w), 2)

	w = ts.do(t, http.MethodGet, "/api/apps/?type=spa", nil)
	require.Equal(t, http.StatusOK, w.Code)
	spas := decode[[]AppView](t, w)
	require.Len(t, spas, 1)
	assert.Equal(t, "web", spas[0].ClientID)

	w = ts.do(t, http.MethodGet, "/api/apps/?type=mobile", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetApp(t *testing.T) {
	ts := newTestServer(t)
	api := ts.createApi(t, "identity-api")

	w := ts.do(t, http.MethodGet, fmt.Sprintf("/api/apps/%d", api.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, api.ClientSecret, decode[AppView](t, w).ClientSecret)

	w = ts.do(t, http.MethodGet, "/api/apps/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/apps/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateApp(t *testing.T) {
	ts := newTestServer(t)
	api := ts.createApi(t, "identity-api")
	spa := ts.createSpa(t, AppRequest{Name: "Web", URL: "http://w/", ClientID: "web"})

	w := ts.do(t, http.MethodPut, fmt.Sprintf("/api/apps/%d", spa.ID), AppRequest{
		Name: "Web 2", URL: "http://w2/", ClientID: "web", Apis: []string{"identity-api"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[AppView](t, w)
	assert.Equal(t, "Web 2", updated.Name)
	assert.Equal(t, "admin-1", updated.UpdatedBy)
	assert.NotNil(t, updated.LastUpdated)

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/apps/%d/apis", spa.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]AppView](t, w), 1)

	w = ts.do(t, http.MethodPut, fmt.Sprintf("/api/apps/%d", api.ID), AppRequest{Name: "API 2", ClientID: "identity-api"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, api.ClientSecret, decode[AppView](t, w).ClientSecret)

	w = ts.do(t, http.MethodPut, fmt.Sprintf("/api/apps/%d", api.ID), AppRequest{Name: "API 2", ClientID: "renamed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetSecret(t *testing.T) {
	ts := newTestServer(t)
	api := ts.createApi(t, "identity-api")
	spa := ts.createSpa(t, AppRequest{Name: "Web", URL: "http://w/", ClientID: "web"})

	w := ts.do(t, http.MethodPost, fmt.Sprintf("/api/apps/%d/reset-secret", api.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	reset := decode[AppView](t, w)
	assert.NotEmpty(t, reset.ClientSecret)
	assert.NotEqual(t, api.ClientSecret, reset.ClientSecret)

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/apps/%d/validate-secret", api.ID), nil)
	assert.True(t, decode[ValidateSecretResponse](t, w).Valid)

	w = ts.do(t, http.MethodPost, fmt.Sprintf("/api/apps/%d/reset-secret", spa.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteApp(t *testing.T) {
	ts := newTestServer(t)
	api := ts.createApi(t, "identity-api")

	w := ts.do(t, http.MethodDelete, fmt.Sprintf("/api/apps/%d", api.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/apps/%d", api.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// the client id can be reused
	ts.createApi(t, "identity-api")
}

func TestRequiresUser(t *testing.T) {
	ts := newTestServer(t)
	ts.user = nil

	w := ts.do(t, http.MethodPost, "/api/apps/api", AppRequest{Name: "x", ClientID: "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListMyApps(t *testing.T) {
	ts := newTestServer(t)
	ts.createSpa(t, AppRequest{Name: "Open", URL: "http://open", ClientID: "open", Order: 1})
	ts.createSpa(t, AppRequest{Name: "Files", URL: "http://files/", ClientID: "files", Roles: []string{"Files"}, Order: 2})
	ts.createApi(t, "identity-api")

	ts.user = &client.AuthUser{UserId: "u-1", Roles: []string{"Driver"}}
	w := ts.do(t, http.MethodGet, "/api/me/apps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	apps := decode[[]AppView](t, w)
	require.Len(t, apps, 1)
	assert.Equal(t, "http://open/login?source=portal", apps[0].URL)

	ts.user = &client.AuthUser{UserId: "u-2", Roles: []string{"files"}}
	w = ts.do(t, http.MethodGet, "/api/me/apps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]AppView](t, w), 2)
}

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/{id}/reset-secret"))

	w := httptest.NewRecorder()
	SpecHandler(doc)(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ResetSecret")
}
