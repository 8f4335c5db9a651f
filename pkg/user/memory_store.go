package user

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/idm-portal/pkg/role"
)

// MemoryAccountStore keeps accounts in memory and delegates role membership
// to a role repository.
type MemoryAccountStore struct {
	mu    sync.RWMutex
	users map[string]User
	roles role.RoleRepository
}

func NewMemoryAccountStore(roles role.RoleRepository) *MemoryAccountStore {
	return &MemoryAccountStore{
		users: make(map[string]User),
		roles: roles,
	}
}

// List returns users ordered by creation time then user name.
func (s *MemoryAccountStore) List(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].UserName < users[j].UserName
	})
	return users, nil
}

func (s *MemoryAccountStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.find(func(u User) bool { return u.ID == id })
}

func (s *MemoryAccountStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.find(func(u User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *MemoryAccountStore) FindByUserName(ctx context.Context, userName string) (*User, error) {
	return s.find(func(u User) bool { return strings.EqualFold(u.UserName, userName) })
}

func (s *MemoryAccountStore) FindByPhone(ctx context.Context, phone string) (*User, error) {
	return s.find(func(u User) bool { return u.Phone == phone })
}

func (s *MemoryAccountStore) find(match func(User) bool) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

// Create assigns an id when u has none.
func (s *MemoryAccountStore) Create(ctx context.Context, u *User) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res := s.validate(u, ""); !res.Succeeded {
		return res, nil
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if _, ok := s.users[u.ID]; ok {
		return Failed(OperationError{Code: "DuplicateId", Description: "User id '" + u.ID + "' is already taken."}), nil
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = *u
	return Success(), nil
}

func (s *MemoryAccountStore) Update(ctx context.Context, u *User) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return Failed(OperationError{Code: "UserNotFound", Description: "User '" + u.ID + "' does not exist."}), nil
	}
	if res := s.validate(u, u.ID); !res.Succeeded {
		return res, nil
	}
	u.CreatedAt = existing.CreatedAt
	s.users[u.ID] = *u
	return Success(), nil
}

// validate enforces unique user names and emails, ignoring selfID.
func (s *MemoryAccountStore) validate(u *User, selfID string) Result {
	if strings.TrimSpace(u.UserName) == "" {
		return Failed(OperationError{Code: "InvalidUserName", Description: "User name cannot be empty."})
	}
	for id, other := range s.users {
		if id == selfID {
			continue
		}
		if strings.EqualFold(other.UserName, u.UserName) {
			return Failed(OperationError{Code: "DuplicateUserName", Description: "User name '" + u.UserName + "' is already taken."})
		}
		if u.Email != "" && strings.EqualFold(other.Email, u.Email) {
			return Failed(OperationError{Code: "DuplicateEmail", Description: "Email '" + u.Email + "' is already taken."})
		}
	}
	return Success()
}

func (s *MemoryAccountStore) AddToRole(ctx context.Context, u *User, roleName string) (Result, error) {
	if res := s.exists(u); !res.Succeeded {
		return res, nil
	}
	roleID, err := s.roles.GetRoleIdByName(ctx, roleName)
	if errors.Is(err, role.ErrRoleNotFound) {
		return Failed(OperationError{Code: "InvalidRoleName", Description: "Role '" + roleName + "' does not exist."}), nil
	}
	if err != nil {
		return Result{}, err
	}

	current, err := s.GetRoles(ctx, u)
	if err != nil {
		return Result{}, err
	}
	for _, name := range current {
		if strings.EqualFold(name, roleName) {
			return Failed(OperationError{Code: "UserAlreadyInRole", Description: "User already in role '" + roleName + "'."}), nil
		}
	}

	if err := s.roles.AddUserToRole(ctx, roleID, u.ID); err != nil {
		return Result{}, err
	}
	return Success(), nil
}

func (s *MemoryAccountStore) RemoveFromRoles(ctx context.Context, u *User, roleNames []string) (Result, error) {
	if res := s.exists(u); !res.Succeeded {
		return res, nil
	}
	for _, name := range roleNames {
		roleID, err := s.roles.GetRoleIdByName(ctx, name)
		if errors.Is(err, role.ErrRoleNotFound) {
			return Failed(OperationError{Code: "InvalidRoleName", Description: "Role '" + name + "' does not exist."}), nil
		}
		if err != nil {
			return Result{}, err
		}
		if err := s.roles.RemoveUserFromRole(ctx, roleID, u.ID); err != nil {
			return Result{}, err
		}
	}
	return Success(), nil
}

func (s *MemoryAccountStore) GetRoles(ctx context.Context, u *User) ([]string, error) {
	roles, err := s.roles.GetUserRoles(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return role.Names(roles), nil
}

func (s *MemoryAccountStore) exists(u *User) Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[u.ID]; !ok {
		return Failed(OperationError{Code: "UserNotFound", Description: "User '" + u.ID + "' does not exist."})
	}
	return Success()
}
