package authz

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Invalidator receives notifications about graph writes so cached
// resolutions can be dropped.
type Invalidator interface {
	InvalidateUser(ctx context.Context, identity string)
	InvalidateRole(ctx context.Context, roleID uuid.UUID)
}

// Service orchestrates administrative operations on the role/permission
// graph. Reads used for decisions live in Resolver/Checker; everything here
// is provisioning, and every write notifies the invalidator.
type Service struct {
	repo        Repository
	invalidator Invalidator
}

// NewService constructs a Service. The invalidator may be nil when no cache
// is layered over the resolver.
func NewService(repo Repository, invalidator Invalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole fetches a role by ID.
func (s *Service) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole inserts a new role.
func (s *Service) CreateRole(ctx context.Context, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("authz: role name required")
	}
	return s.repo.CreateRole(ctx, name, strings.TrimSpace(description))
}

// UpdateRole updates an existing role.
func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("authz: role name required")
	}
	return s.repo.UpdateRole(ctx, id, name, strings.TrimSpace(description))
}

// DeleteRole removes a role. Users pointing at it fall back to the empty
// permission set through the nullable foreign key. The affected identities
// are captured before the delete (afterwards the role has no members to
// enumerate) and invalidated after it, so a resolution racing the delete
// cannot re-fill the cache with the dead role's grants.
func (s *Service) DeleteRole(ctx context.Context, id uuid.UUID) error {
	var identities []string
	if s.invalidator != nil {
		emails, err := s.repo.EmailsByRole(ctx, id)
		if err != nil {
			return err
		}
		identities = emails
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return err
	}
	for _, email := range identities {
		s.invalidator.InvalidateUser(ctx, email)
	}
	return nil
}

// ListPermissions returns all permissions.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// EnsurePermission upserts the permission for a resource/action pair. The
// canonical name is composed here, never by the caller.
func (s *Service) EnsurePermission(ctx context.Context, resource string, action Action, description string) (Permission, error) {
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return Permission{}, errors.New("authz: resource required")
	}
	if !action.Valid() {
		return Permission{}, errors.New("authz: unknown action")
	}
	return s.repo.EnsurePermission(ctx, Permission{
		Name:        PermissionName(resource, action),
		Resource:    resource,
		Action:      string(action),
		Description: strings.TrimSpace(description),
	})
}

// SetRolePermissions replaces the role's grant set and invalidates every
// identity holding the role.
func (s *Service) SetRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	if err := s.repo.ReplaceRolePermissions(ctx, roleID, permissionIDs); err != nil {
		return err
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateRole(ctx, roleID)
	}
	return nil
}

// AssignRole sets the user's single role and invalidates that identity.
func (s *Service) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	email, err := s.repo.AssignRole(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateUser(ctx, email)
	}
	return nil
}

// ClearRole removes the user's role.
func (s *Service) ClearRole(ctx context.Context, userID uuid.UUID) error {
	email, err := s.repo.ClearRole(ctx, userID)
	if err != nil {
		return err
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateUser(ctx, email)
	}
	return nil
}
