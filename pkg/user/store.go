package user

import "context"

// AccountStore is the identity store holding user accounts and their role
// memberships. Lookups return nil, nil when nothing matches. Writes report
// account-level problems in Result and reserve error for infrastructure
// failures.
type AccountStore interface {
	List(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUserName(ctx context.Context, userName string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)

	Create(ctx context.Context, u *User) (Result, error)
	Update(ctx context.Context, u *User) (Result, error)

	AddToRole(ctx context.Context, u *User, roleName string) (Result, error)
	RemoveFromRoles(ctx context.Context, u *User, roleNames []string) (Result, error)
	GetRoles(ctx context.Context, u *User) ([]string, error)
}
