// Package role holds the portal's fixed role catalogue and the permissions
// derived from it.
//
// Roles are a closed set (AppRole) persisted by name through a
// RoleRepository, which also records which users hold which roles. Access
// checks go through Permission, never through role names:
//
//	roles := role.ParseAppRoles(user.Roles)
//	if !role.HasPermission(roles, role.PermissionAdmin) {
//		return errors.Forbidden("admin only")
//	}
//
// RoleService wraps a repository for listing, lookup and seeding:
//
//	svc := role.NewRoleService(role.NewInMemoryRoleRepository())
//	for _, r := range role.AllAppRoles() {
//		_ = svc.Ensure(ctx, r)
//	}
package role
