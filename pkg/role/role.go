package role

import (
	"strings"

	"github.com/google/uuid"
)

// AppRole is one of the portal's built-in roles.
type AppRole int

const (
	Boss AppRole = iota + 1
	Dev
	IT
	Clerk
	Recorder
	Files
	Driver
	CarManager
)

var appRoleNames = map[AppRole]string{
	Boss:       "Boss",
	Dev:        "Dev",
	IT:         "IT",
	Clerk:      "Clerk",
	Recorder:   "Recorder",
	Files:      "Files",
	Driver:     "Driver",
	CarManager: "CarManager",
}

var appRoleTitles = map[AppRole]string{
	Boss:       "老闆",
	Dev:        "開發者",
	IT:         "資訊人員",
	Clerk:      "書記官",
	Recorder:   "錄事",
	Files:      "檔案管理員",
	Driver:     "司機",
	CarManager: "車輛管理",
}

// AllAppRoles lists every role in declaration order.
func AllAppRoles() []AppRole {
	return []AppRole{Boss, Dev, IT, Clerk, Recorder, Files, Driver, CarManager}
}

// String is the persisted and token form of the role.
func (r AppRole) String() string {
	if name, ok := appRoleNames[r]; ok {
		return name
	}
	return "Unknown"
}

// Title is the human readable label.
func (r AppRole) Title() string {
	return appRoleTitles[r]
}

// ParseAppRole matches a role name case-insensitively.
func ParseAppRole(name string) (AppRole, bool) {
	name = strings.TrimSpace(name)
	for r, n := range appRoleNames {
		if strings.EqualFold(n, name) {
			return r, true
		}
	}
	return 0, false
}

// ParseAppRoles converts names, dropping anything unknown.
func ParseAppRoles(names []string) []AppRole {
	roles := make([]AppRole, 0, len(names))
	for _, name := range names {
		if r, ok := ParseAppRole(name); ok {
			roles = append(roles, r)
		}
	}
	return roles
}

// Permission is a capability granted through roles.
type Permission int

const (
	PermissionAdmin Permission = iota + 1
	PermissionJudgebookFiles
)

func (p Permission) String() string {
	switch p {
	case PermissionAdmin:
		return "Admin"
	case PermissionJudgebookFiles:
		return "JudgebookFiles"
	}
	return "Unknown"
}

var permissionRoles = map[Permission][]AppRole{
	PermissionAdmin:          {Boss, Dev, IT},
	PermissionJudgebookFiles: {Boss, Dev, IT, Files, Clerk, Recorder},
}

// RolesFor returns the roles that carry p.
func RolesFor(p Permission) []AppRole {
	return append([]AppRole(nil), permissionRoles[p]...)
}

// HasPermission reports whether any of roles carries p.
func HasPermission(roles []AppRole, p Permission) bool {
	for _, granted := range permissionRoles[p] {
		for _, r := range roles {
			if r == granted {
				return true
			}
		}
	}
	return false
}

// IsAdmin is true for developers and the boss.
func IsAdmin(roles []AppRole) bool {
	for _, r := range roles {
		if r == Dev || r == Boss {
			return true
		}
	}
	return false
}

// Role is a persisted role record.
type Role struct {
	ID    uuid.UUID
	Name  string
	Title string
}

// AppRole maps the record back onto the catalogue.
func (r Role) AppRole() (AppRole, bool) {
	return ParseAppRole(r.Name)
}

// Names returns the role names in order.
func Names(roles []Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names
}
