package user

import (
	"context"
	"log/slog"

	"github.com/tendant/idm-portal/pkg/errors"
	"github.com/tendant/idm-portal/pkg/role"
)

type UserService struct {
	store AccountStore
}

func NewUserService(store AccountStore) *UserService {
	return &UserService{
		store: store,
	}
}

func (s *UserService) FetchAll(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// FetchByRoles returns users holding any of roles, or everyone when roles is empty.
func (s *UserService) FetchByRoles(ctx context.Context, roles []role.AppRole) ([]User, error) {
	users, err := s.store.List(ctx)
	if err != nil || len(roles) == 0 {
		return users, err
	}

	matched := []User{}
	for i := range users {
		held, err := s.GetRoles(ctx, &users[i])
		if err != nil {
			return nil, err
		}
		if intersects(held, roles) {
			matched = append(matched, users[i])
		}
	}
	return matched, nil
}

func (s *UserService) FetchByIDs(ctx context.Context, ids []string) ([]User, error) {
	users := make([]User, 0, len(ids))
	for _, id := range ids {
		u, err := s.store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (*User, error) {
	return s.store.FindByID(ctx, id)
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.store.FindByEmail(ctx, email)
}

func (s *UserService) FindByUserName(ctx context.Context, userName string) (*User, error) {
	return s.store.FindByUserName(ctx, userName)
}

func (s *UserService) FindByPhone(ctx context.Context, phone string) (*User, error) {
	return s.store.FindByPhone(ctx, phone)
}

func (s *UserService) Create(ctx context.Context, u *User) error {
	res, err := s.store.Create(ctx, u)
	if err != nil {
		return err
	}
	if !res.Succeeded {
		first := res.FirstError()
		slog.Error("create user failed", "user_name", u.UserName, "code", first.Code, "description", first.Description)
		return errors.UserOperationFailed("create", first.Code, first.Description)
	}
	slog.Info("user created", "user_id", u.ID, "user_name", u.UserName)
	return nil
}

func (s *UserService) Update(ctx context.Context, u *User) error {
	res, err := s.store.Update(ctx, u)
	if err != nil {
		return err
	}
	if !res.Succeeded {
		first := res.FirstError()
		slog.Error("update user failed", "user_id", u.ID, "code", first.Code, "description", first.Description)
		return errors.UserOperationFailed("update", first.Code, first.Description)
	}
	return nil
}

func (s *UserService) AddToRole(ctx context.Context, u *User, r role.AppRole) error {
	res, err := s.store.AddToRole(ctx, u, r.String())
	if err != nil {
		return err
	}
	if !res.Succeeded {
		first := res.FirstError()
		return errors.UserOperationFailed("add role to", first.Code, first.Description).WithDetail("role", r.String())
	}
	return nil
}

// SyncRoles makes roles the user's exact role set.
func (s *UserService) SyncRoles(ctx context.Context, u *User, roles []role.AppRole) error {
	current, err := s.store.GetRoles(ctx, u)
	if err != nil {
		return err
	}
	if len(current) > 0 {
		res, err := s.store.RemoveFromRoles(ctx, u, current)
		if err != nil {
			return err
		}
		if !res.Succeeded {
			first := res.FirstError()
			return errors.UserOperationFailed("remove roles from", first.Code, first.Description)
		}
	}
	for _, r := range roles {
		if err := s.AddToRole(ctx, u, r); err != nil {
			return err
		}
	}
	return nil
}

// GetRoles returns the catalogue roles held by u. Unknown names are skipped.
func (s *UserService) GetRoles(ctx context.Context, u *User) ([]role.AppRole, error) {
	names, err := s.store.GetRoles(ctx, u)
	if err != nil {
		return nil, err
	}
	return role.ParseAppRoles(names), nil
}

func (s *UserService) HasRole(ctx context.Context, u *User, r role.AppRole) (bool, error) {
	roles, err := s.GetRoles(ctx, u)
	if err != nil {
		return false, err
	}
	return intersects(roles, []role.AppRole{r}), nil
}

func (s *UserService) IsAdmin(ctx context.Context, u *User) (bool, error) {
	roles, err := s.GetRoles(ctx, u)
	if err != nil {
		return false, err
	}
	return role.IsAdmin(roles), nil
}

func intersects(a, b []role.AppRole) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
