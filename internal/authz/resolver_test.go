package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasdash/atlasdash/internal/authz"
	"github.com/atlasdash/atlasdash/internal/shared"
	_ "github.com/atlasdash/atlasdash/testing"
)

// ============================================================================
// STUB REPOSITORY
// ============================================================================

type stubRepo struct {
	grants       map[string][]authz.Grant
	emailsByRole map[uuid.UUID][]string
	roles        map[uuid.UUID]authz.Role
	permissions  []authz.Permission

	assignEmail string
	clearEmail  string

	grantsErr  error
	genericErr error

	replacedRole   uuid.UUID
	replacedPerms  []uuid.UUID
	deletedRole    uuid.UUID
	userGrantCalls int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		grants:       make(map[string][]authz.Grant),
		emailsByRole: make(map[uuid.UUID][]string),
		roles:        make(map[uuid.UUID]authz.Role),
	}
}

func (s *stubRepo) UserGrants(ctx context.Context, email string) ([]authz.Grant, error) {
	s.userGrantCalls++
	if s.grantsErr != nil {
		return nil, s.grantsErr
	}
	return s.grants[email], nil
}

func (s *stubRepo) EmailsByRole(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	if s.genericErr != nil {
		return nil, s.genericErr
	}
	return s.emailsByRole[roleID], nil
}

func (s *stubRepo) ListRoles(ctx context.Context) ([]authz.Role, error) {
	if s.genericErr != nil {
		return nil, s.genericErr
	}
	roles := make([]authz.Role, 0, len(s.roles))
	for _, r := range s.roles {
		roles = append(roles, r)
	}
	return roles, nil
}

func (s *stubRepo) GetRole(ctx context.Context, id uuid.UUID) (authz.Role, error) {
	role, ok := s.roles[id]
	if !ok {
		return authz.Role{}, shared.ErrNotFound
	}
	return role, nil
}

func (s *stubRepo) CreateRole(ctx context.Context, name, description string) (authz.Role, error) {
	if s.genericErr != nil {
		return authz.Role{}, s.genericErr
	}
	role := authz.Role{ID: uuid.New(), Name: name, Description: description}
	s.roles[role.ID] = role
	return role, nil
}

func (s *stubRepo) UpdateRole(ctx context.Context, id uuid.UUID, name, description string) (authz.Role, error) {
	role, ok := s.roles[id]
	if !ok {
		return authz.Role{}, shared.ErrNotFound
	}
	role.Name = name
	role.Description = description
	s.roles[id] = role
	return role, nil
}

func (s *stubRepo) DeleteRole(ctx context.Context, id uuid.UUID) error {
	s.deletedRole = id
	delete(s.roles, id)
	// The role's members are no longer enumerable once it is gone, same as
	// the FK nulling out role_id.
	delete(s.emailsByRole, id)
	return nil
}

func (s *stubRepo) ListPermissions(ctx context.Context) ([]authz.Permission, error) {
	return s.permissions, nil
}

func (s *stubRepo) EnsurePermission(ctx context.Context, p authz.Permission) (authz.Permission, error) {
	p.ID = uuid.New()
	s.permissions = append(s.permissions, p)
	return p, nil
}

func (s *stubRepo) ReplaceRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	if s.genericErr != nil {
		return s.genericErr
	}
	s.replacedRole = roleID
	s.replacedPerms = permissionIDs
	return nil
}

func (s *stubRepo) AssignRole(ctx context.Context, userID, roleID uuid.UUID) (string, error) {
	if s.genericErr != nil {
		return "", s.genericErr
	}
	return s.assignEmail, nil
}

func (s *stubRepo) ClearRole(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.genericErr != nil {
		return "", s.genericErr
	}
	return s.clearEmail, nil
}

func grant(resource string, action authz.Action) authz.Grant {
	return authz.Grant{
		Name:     authz.PermissionName(resource, action),
		Resource: resource,
		Action:   string(action),
	}
}

// ============================================================================
// RESOLVER
// ============================================================================

func TestResolveUnknownIdentityYieldsEmptySet(t *testing.T) {
	repo := newStubRepo()
	resolver := authz.NewResolver(repo, nil)

	set, err := resolver.ResolvePermissions(context.Background(), "ghost@nowhere")
	require.NoError(t, err)
	assert.Empty(t, set)
	assert.False(t, set.Has("customers.read"))
}

func TestResolveCollectsRoleGrants(t *testing.T) {
	repo := newStubRepo()
	repo.grants["editor@atlasdash.local"] = []authz.Grant{
		grant("posts", authz.ActionCreate),
		grant("posts", authz.ActionUpdate),
		grant("customers", authz.ActionRead),
	}
	resolver := authz.NewResolver(repo, nil)

	set, err := resolver.ResolvePermissions(context.Background(), "editor@atlasdash.local")
	require.NoError(t, err)
	assert.Len(t, set, 3)
	assert.True(t, set.Has("posts.create"))
	assert.True(t, set.Has("posts.update"))
	assert.True(t, set.Has("customers.read"))
	assert.False(t, set.Has("posts.delete"))
}

func TestResolveDeduplicatesGrants(t *testing.T) {
	repo := newStubRepo()
	repo.grants["a@b.c"] = []authz.Grant{
		grant("posts", authz.ActionRead),
		grant("posts", authz.ActionRead),
	}
	resolver := authz.NewResolver(repo, nil)

	set, err := resolver.ResolvePermissions(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.Len(t, set, 1)
}

func TestResolveSkipsMalformedRows(t *testing.T) {
	repo := newStubRepo()
	repo.grants["a@b.c"] = []authz.Grant{
		grant("posts", authz.ActionRead),
		{Name: "posts.manage", Resource: "posts", Action: "manage"},
		{Name: "legacy_delete", Resource: "posts", Action: "delete"},
	}
	resolver := authz.NewResolver(repo, nil)

	set, err := resolver.ResolvePermissions(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.Len(t, set, 1)
	assert.True(t, set.Has("posts.read"))
	assert.False(t, set.Has("posts.manage"))
	assert.False(t, set.Has("legacy_delete"))
	assert.False(t, set.Has("posts.delete"))
}

func TestResolveIsIdempotent(t *testing.T) {
	repo := newStubRepo()
	repo.grants["a@b.c"] = []authz.Grant{
		grant("invoices", authz.ActionRead),
		grant("invoices", authz.ActionUpdate),
	}
	resolver := authz.NewResolver(repo, nil)

	first, err := resolver.ResolvePermissions(context.Background(), "a@b.c")
	require.NoError(t, err)
	second, err := resolver.ResolvePermissions(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveWrapsStoreFailure(t *testing.T) {
	repo := newStubRepo()
	repo.grantsErr = errors.New("connection refused")
	resolver := authz.NewResolver(repo, nil)

	set, err := resolver.ResolvePermissions(context.Background(), "a@b.c")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrStoreUnavailable))
	assert.Nil(t, set)
}
