package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAppRole(t *testing.T) {
	for _, r := range AllAppRoles() {
		parsed, ok := ParseAppRole(r.String())
		assert.True(t, ok)
		assert.Equal(t, r, parsed)
		assert.NotEmpty(t, r.Title())
	}

	parsed, ok := ParseAppRole(" carmanager ")
	assert.True(t, ok)
	assert.Equal(t, CarManager, parsed)

	_, ok = ParseAppRole("Janitor")
	assert.False(t, ok)

	assert.Equal(t, []AppRole{Dev, Files}, ParseAppRoles([]string{"dev", "nobody", "FILES"}))
	assert.Equal(t, "開發者", Dev.Title())
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role  AppRole
		admin bool
		files bool
	}{
		{Boss, true, true},
		{Dev, true, true},
		{IT, true, true},
		{Files, false, true},
		{Clerk, false, true},
		{Recorder, false, true},
		{Driver, false, false},
		{CarManager, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			roles := []AppRole{tt.role}
			assert.Equal(t, tt.admin, HasPermission(roles, PermissionAdmin))
			assert.Equal(t, tt.files, HasPermission(roles, PermissionJudgebookFiles))
		})
	}

	assert.False(t, HasPermission(nil, PermissionAdmin))
	assert.True(t, HasPermission([]AppRole{Driver, IT}, PermissionAdmin))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin([]AppRole{Dev}))
	assert.True(t, IsAdmin([]AppRole{Driver, Boss}))
	assert.False(t, IsAdmin([]AppRole{IT}))
	assert.False(t, IsAdmin(nil))
}

func TestRolesFor(t *testing.T) {
	assert.Equal(t, []AppRole{Boss, Dev, IT}, RolesFor(PermissionAdmin))

	roles := RolesFor(PermissionAdmin)
	roles[0] = Driver
	assert.Equal(t, Boss, RolesFor(PermissionAdmin)[0])
}
