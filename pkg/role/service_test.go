package role

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededService(t *testing.T) (*RoleService, *InMemoryRoleRepository) {
	t.Helper()
	repo := NewInMemoryRoleRepository()
	svc := NewRoleService(repo)
	for _, r := range AllAppRoles() {
		require.NoError(t, svc.Ensure(context.Background(), r))
	}
	return svc, repo
}

func TestFetchExcludesDevAndBoss(t *testing.T) {
	svc, _ := seededService(t)

	roles, err := svc.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"IT", "Clerk", "Recorder", "Files", "Driver", "CarManager"}, Names(roles))

	all, err := svc.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestEnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, repo := seededService(t)

	clerk, err := svc.Find(ctx, "Clerk")
	require.NoError(t, err)
	require.NotNil(t, clerk)
	require.NoError(t, repo.UpdateRole(ctx, UpdateRoleParams{ID: clerk.ID, Name: "Clerk", Title: "stale"}))

	require.NoError(t, svc.Ensure(ctx, Clerk))

	refreshed, err := svc.FindByID(ctx, clerk.ID)
	require.NoError(t, err)
	assert.Equal(t, Clerk.Title(), refreshed.Title)

	all, err := svc.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestFindMissing(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t)

	r, err := svc.Find(ctx, "Janitor")
	assert.NoError(t, err)
	assert.Nil(t, r)

	r, err = svc.FindByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, r)

	found, err := svc.Find(ctx, "dev")
	require.NoError(t, err)
	require.NotNil(t, found)
	ar, ok := found.AppRole()
	assert.True(t, ok)
	assert.Equal(t, Dev, ar)
}

func TestFetchByIDs(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t)

	files, err := svc.Find(ctx, "Files")
	require.NoError(t, err)
	driver, err := svc.Find(ctx, "Driver")
	require.NoError(t, err)

	roles, err := svc.FetchByIDs(ctx, []uuid.UUID{driver.ID, uuid.New(), files.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Driver", "Files"}, Names(roles))
}

func TestGetRolesByUser(t *testing.T) {
	ctx := context.Background()
	svc, repo := seededService(t)

	dev, err := svc.Find(ctx, "Dev")
	require.NoError(t, err)
	it, err := svc.Find(ctx, "IT")
	require.NoError(t, err)

	require.NoError(t, repo.AddUserToRole(ctx, it.ID, "user-1"))
	require.NoError(t, repo.AddUserToRole(ctx, dev.ID, "user-1"))

	roles, err := svc.GetRolesByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dev", "IT"}, Names(roles))

	require.NoError(t, repo.RemoveUserFromRole(ctx, dev.ID, "user-1"))
	roles, err = svc.GetRolesByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"IT"}, Names(roles))

	users, err := repo.GetRoleUsers(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, users)

	assert.ErrorIs(t, repo.AddUserToRole(ctx, uuid.New(), "user-1"), ErrRoleNotFound)
}
