package role

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRoleRepository implements RoleRepository using in-memory storage
type InMemoryRoleRepository struct {
	mu        sync.RWMutex
	roles     map[uuid.UUID]Role
	order     []uuid.UUID                   // creation order
	roleUsers map[uuid.UUID]map[string]bool // roleID -> userIDs
}

// NewInMemoryRoleRepository creates a new in-memory role repository
func NewInMemoryRoleRepository() *InMemoryRoleRepository {
	return &InMemoryRoleRepository{
		roles:     make(map[uuid.UUID]Role),
		roleUsers: make(map[uuid.UUID]map[string]bool),
	}
}

func (r *InMemoryRoleRepository) FindRoles(ctx context.Context) ([]Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := make([]Role, 0, len(r.order))
	for _, id := range r.order {
		roles = append(roles, r.roles[id])
	}
	return roles, nil
}

func (r *InMemoryRoleRepository) GetRoleById(ctx context.Context, id uuid.UUID) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[id]
	if !ok {
		return Role{}, ErrRoleNotFound
	}
	return role, nil
}

// GetRoleIdByName matches names case-insensitively.
func (r *InMemoryRoleRepository) GetRoleIdByName(ctx context.Context, name string) (uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if strings.EqualFold(r.roles[id].Name, name) {
			return id, nil
		}
	}
	return uuid.Nil, ErrRoleNotFound
}

func (r *InMemoryRoleRepository) CreateRole(ctx context.Context, name, title string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.roles {
		if strings.EqualFold(existing.Name, name) {
			return uuid.Nil, ErrRoleExists
		}
	}
	id := uuid.New()
	r.roles[id] = Role{ID: id, Name: name, Title: title}
	r.order = append(r.order, id)
	r.roleUsers[id] = make(map[string]bool)
	return id, nil
}

func (r *InMemoryRoleRepository) UpdateRole(ctx context.Context, arg UpdateRoleParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.roles[arg.ID]; !ok {
		return ErrRoleNotFound
	}
	r.roles[arg.ID] = Role{ID: arg.ID, Name: arg.Name, Title: arg.Title}
	return nil
}

func (r *InMemoryRoleRepository) AddUserToRole(ctx context.Context, roleID uuid.UUID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.roles[roleID]; !ok {
		return ErrRoleNotFound
	}
	r.roleUsers[roleID][userID] = true
	return nil
}

func (r *InMemoryRoleRepository) RemoveUserFromRole(ctx context.Context, roleID uuid.UUID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if users, ok := r.roleUsers[roleID]; ok {
		delete(users, userID)
	}
	return nil
}

// GetUserRoles returns the user's roles in creation order.
func (r *InMemoryRoleRepository) GetUserRoles(ctx context.Context, userID string) ([]Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := []Role{}
	for _, id := range r.order {
		if r.roleUsers[id][userID] {
			roles = append(roles, r.roles[id])
		}
	}
	return roles, nil
}

func (r *InMemoryRoleRepository) GetRoleUsers(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.roleUsers[roleID]))
	for userID := range r.roleUsers[roleID] {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users, nil
}
