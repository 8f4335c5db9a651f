package role

import (
	"context"

	"github.com/google/uuid"
)

// RoleRepository persists roles and user role assignments.
type RoleRepository interface {
	FindRoles(ctx context.Context) ([]Role, error)
	GetRoleById(ctx context.Context, id uuid.UUID) (Role, error)
	GetRoleIdByName(ctx context.Context, name string) (uuid.UUID, error)
	CreateRole(ctx context.Context, name, title string) (uuid.UUID, error)
	UpdateRole(ctx context.Context, arg UpdateRoleParams) error

	AddUserToRole(ctx context.Context, roleID uuid.UUID, userID string) error
	RemoveUserFromRole(ctx context.Context, roleID uuid.UUID, userID string) error
	GetUserRoles(ctx context.Context, userID string) ([]Role, error)
	GetRoleUsers(ctx context.Context, roleID uuid.UUID) ([]string, error)
}

type UpdateRoleParams struct {
	ID    uuid.UUID
	Name  string
	Title string
}
