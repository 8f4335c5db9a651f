package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/idm-portal/pkg/errors"
	"github.com/tendant/idm-portal/pkg/role"
)

func newTestService(t *testing.T) *UserService {
	t.Helper()
	repo := role.NewInMemoryRoleRepository()
	roles := role.NewRoleService(repo)
	for _, r := range role.AllAppRoles() {
		require.NoError(t, roles.Ensure(context.Background(), r))
	}
	return NewUserService(NewMemoryAccountStore(repo))
}

func createUser(t *testing.T, svc *UserService, email string, at time.Time) *User {
	t.Helper()
	u := &User{UserName: email, Email: email, Name: email, Phone: "0900" + email[:1], Active: true, CreatedAt: at}
	require.NoError(t, svc.Create(context.Background(), u))
	return u
}

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	u := createUser(t, svc, "admin@example.com", time.Time{})

	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := svc.FindByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	byName, err := svc.FindByUserName(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byPhone, err := svc.FindByPhone(ctx, u.Phone)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byPhone.ID)

	missing, err := svc.FindByID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateDuplicate(t *testing.T) {
	svc := newTestService(t)
	createUser(t, svc, "admin@example.com", time.Time{})

	err := svc.Create(context.Background(), &User{UserName: "admin@example.com"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUserOperationFailed))
	assert.Equal(t, "[USER_OPERATION_FAILED] create user failed: DuplicateUserName : User name 'admin@example.com' is already taken.", err.Error())
	assert.Equal(t, "DuplicateUserName", errors.GetDetails(err)["code"])
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	u := createUser(t, svc, "admin@example.com", time.Time{})

	u.Name = "Admin"
	require.NoError(t, svc.Update(ctx, u))
	found, err := svc.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admin", found.Name)

	err = svc.Update(ctx, &User{ID: "ghost", UserName: "ghost"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeUserOperationFailed))
}

func TestRoles(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	u := createUser(t, svc, "admin@example.com", time.Time{})

	require.NoError(t, svc.AddToRole(ctx, u, role.Dev))
	isAdmin, err := svc.IsAdmin(ctx, u)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	err = svc.AddToRole(ctx, u, role.Dev)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUserOperationFailed))
	assert.Equal(t, "Dev", errors.GetDetails(err)["role"])

	require.NoError(t, svc.SyncRoles(ctx, u, []role.AppRole{role.Clerk, role.Files}))
	roles, err := svc.GetRoles(ctx, u)
	require.NoError(t, err)
	assert.ElementsMatch(t, []role.AppRole{role.Clerk, role.Files}, roles)

	hasDev, err := svc.HasRole(ctx, u, role.Dev)
	require.NoError(t, err)
	assert.False(t, hasDev)

	isAdmin, err = svc.IsAdmin(ctx, u)
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestAddToRoleUnknownUser(t *testing.T) {
	svc := newTestService(t)

	err := svc.AddToRole(context.Background(), &User{ID: "ghost"}, role.Driver)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUserOperationFailed))
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := createUser(t, svc, "a@example.com", base)
	b := createUser(t, svc, "b@example.com", base.Add(time.Hour))
	c := createUser(t, svc, "c@example.com", base.Add(2*time.Hour))

	require.NoError(t, svc.AddToRole(ctx, a, role.Driver))
	require.NoError(t, svc.AddToRole(ctx, c, role.Files))

	all, err := svc.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(all))

	everyone, err := svc.FetchByRoles(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, everyone, 3)

	drivers, err := svc.FetchByRoles(ctx, []role.AppRole{role.Driver, role.Files})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID}, ids(drivers))

	some, err := svc.FetchByIDs(ctx, []string{c.ID, "ghost", a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID}, ids(some))
}

func ids(users []User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}
