package role

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

var (
	ErrRoleNotFound = errors.New("role not found")
	ErrRoleExists   = errors.New("role already exists")
)

// RoleService provides methods for role management
type RoleService struct {
	repo RoleRepository
}

func NewRoleService(repo RoleRepository) *RoleService {
	return &RoleService{
		repo: repo,
	}
}

// Fetch lists the roles an administrator may hand out. Dev and Boss are
// assigned by seeding only.
func (s *RoleService) Fetch(ctx context.Context) ([]Role, error) {
	roles, err := s.repo.FindRoles(ctx)
	if err != nil {
		return nil, err
	}
	assignable := make([]Role, 0, len(roles))
	for _, r := range roles {
		if ar, ok := r.AppRole(); ok && (ar == Dev || ar == Boss) {
			continue
		}
		assignable = append(assignable, r)
	}
	return assignable, nil
}

func (s *RoleService) FetchAll(ctx context.Context) ([]Role, error) {
	return s.repo.FindRoles(ctx)
}

func (s *RoleService) FetchByIDs(ctx context.Context, ids []uuid.UUID) ([]Role, error) {
	roles := make([]Role, 0, len(ids))
	for _, id := range ids {
		r, err := s.repo.GetRoleById(ctx, id)
		if errors.Is(err, ErrRoleNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, nil
}

// Find returns nil, nil when no role has name.
func (s *RoleService) Find(ctx context.Context, name string) (*Role, error) {
	id, err := s.repo.GetRoleIdByName(ctx, name)
	if errors.Is(err, ErrRoleNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// FindByID returns nil, nil when id is unknown.
func (s *RoleService) FindByID(ctx context.Context, id uuid.UUID) (*Role, error) {
	r, err := s.repo.GetRoleById(ctx, id)
	if errors.Is(err, ErrRoleNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RoleService) GetRolesByUser(ctx context.Context, userID string) ([]Role, error) {
	return s.repo.GetUserRoles(ctx, userID)
}

// Ensure creates r or refreshes its title.
func (s *RoleService) Ensure(ctx context.Context, r AppRole) error {
	existing, err := s.Find(ctx, r.String())
	if err != nil {
		return err
	}
	if existing == nil {
		if _, err := s.repo.CreateRole(ctx, r.String(), r.Title()); err != nil {
			return err
		}
		slog.Info("role created", "role", r.String())
		return nil
	}
	if existing.Title == r.Title() {
		return nil
	}
	return s.repo.UpdateRole(ctx, UpdateRoleParams{ID: existing.ID, Name: r.String(), Title: r.Title()})
}
