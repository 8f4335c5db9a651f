package seed

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/idm-portal/pkg/app"
	"github.com/tendant/idm-portal/pkg/config"
	"github.com/tendant/idm-portal/pkg/crypto"
	"github.com/tendant/idm-portal/pkg/registry"
	"github.com/tendant/idm-portal/pkg/role"
	"github.com/tendant/idm-portal/pkg/user"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	deps     Deps
	registry *registry.MemoryRegistry
	store    *app.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cipher, err := crypto.New("seed-test-key")
	require.NoError(t, err)

	roles := role.NewInMemoryRoleRepository()
	reg := registry.NewMemoryRegistry(registry.WithHashCost(bcrypt.MinCost))
	store := app.NewMemoryStore()

	return &fixture{
		deps: Deps{
			Roles: role.NewRoleService(roles),
			Users: user.NewUserService(user.NewMemoryAccountStore(roles)),
			Apps:  app.NewService(store, reg, cipher),
		},
		registry: reg,
		store:    store,
	}
}

var testAdmin = config.AdminConfig{Email: "admin@example.com", Phone: "0912345678", Name: "Admin"}

func TestRunRequiresAdminIdentity(t *testing.T) {
	tests := []struct {
		name  string
		admin config.AdminConfig
	}{
		{"NoEmail", config.AdminConfig{Phone: "0912345678", Name: "Admin"}},
		{"NoPhone", config.AdminConfig{Email: "admin@example.com", Name: "Admin"}},
		{"NoName", config.AdminConfig{Email: "admin@example.com", Phone: "0912345678"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			_, err := Run(ctx, f.deps, tt.admin)
			require.Error(t, err)

			roles, err := f.deps.Roles.FetchAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, roles)
			users, err := f.deps.Users.FetchAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, users)
		})
	}
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := Run(ctx, f.deps, testAdmin)
	require.NoError(t, err)

	roles, err := f.deps.Roles.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, len(role.AllAppRoles()))

	admin, err := f.deps.Users.FindByEmail(ctx, testAdmin.Email)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, testAdmin.Email, admin.UserName)
	assert.True(t, admin.EmailConfirmed)
	assert.True(t, admin.Active)
	assert.True(t, result.AdminCreated)

	isDev, err := f.deps.Users.HasRole(ctx, admin, role.Dev)
	require.NoError(t, err)
	assert.True(t, isDev)

	require.Len(t, result.Apps, 3)
	assert.Equal(t, IdentityApiClientID, result.Apps[0].ClientID)
	assert.NotEmpty(t, result.Apps[0].ClientSecret)

	api, err := f.deps.Apps.FindByClientID(ctx, IdentityApiClientID)
	require.NoError(t, err)
	require.NotNil(t, api)
	ok, err := f.deps.Apps.ValidateClientSecret(ctx, api)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, clientID := range []string{IdentityWebClientID, IdentityAdminClientID} {
		spa, err := f.deps.Apps.FindByClientID(ctx, clientID)
		require.NoError(t, err)
		require.NotNil(t, spa, clientID)
		assert.Equal(t, app.TypeSpa, spa.Type)
		assert.Equal(t, admin.ID, spa.CreatedBy)

		apis, err := f.deps.Apps.GetPermissionApis(ctx, spa, nil)
		require.NoError(t, err)
		require.Len(t, apis, 1)
		assert.Equal(t, IdentityApiClientID, apis[0].ClientID)
	}

	web, err := f.registry.FindByClientID(ctx, IdentityWebClientID)
	require.NoError(t, err)
	assert.Contains(t, web.RedirectURIs, "http://localhost:5112/signin-callback")

	var out bytes.Buffer
	PrintResult(&out, result)
	assert.Contains(t, out.String(), result.Apps[0].ClientSecret)
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := Run(ctx, f.deps, testAdmin)
	require.NoError(t, err)

	updated := testAdmin
	updated.Name = "Administrator"
	updated.Phone = "0987654321"
	result, err := Run(ctx, f.deps, updated)
	require.NoError(t, err)

	assert.False(t, result.AdminCreated)
	for _, a := range result.Apps {
		assert.False(t, a.Created, a.ClientID)
		assert.Empty(t, a.ClientSecret)
	}

	users, err := f.deps.Users.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Administrator", users[0].Name)
	assert.Equal(t, "0987654321", users[0].Phone)

	apps, err := f.deps.Apps.Fetch(ctx, "")
	require.NoError(t, err)
	assert.Len(t, apps, 3)

	entries, err := f.registry.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
