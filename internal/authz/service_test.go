package authz_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasdash/atlasdash/internal/authz"
)

type recordingInvalidator struct {
	users []string
	roles []uuid.UUID
}

func (r *recordingInvalidator) InvalidateUser(ctx context.Context, identity string) {
	r.users = append(r.users, identity)
}

func (r *recordingInvalidator) InvalidateRole(ctx context.Context, roleID uuid.UUID) {
	r.roles = append(r.roles, roleID)
}

func TestServiceCreateRoleValidation(t *testing.T) {
	service := authz.NewService(newStubRepo(), nil)

	_, err := service.CreateRole(context.Background(), "   ", "whatever")
	require.Error(t, err)

	role, err := service.CreateRole(context.Background(), "  editor  ", " blog crew ")
	require.NoError(t, err)
	assert.Equal(t, "editor", role.Name)
	assert.Equal(t, "blog crew", role.Description)
}

func TestServiceEnsurePermissionComposesName(t *testing.T) {
	repo := newStubRepo()
	service := authz.NewService(repo, nil)

	perm, err := service.EnsurePermission(context.Background(), "invoices", authz.ActionUpdate, "edit invoices")
	require.NoError(t, err)
	assert.Equal(t, "invoices.update", perm.Name)
	assert.True(t, perm.WellFormed())

	_, err = service.EnsurePermission(context.Background(), "", authz.ActionRead, "")
	require.Error(t, err)

	_, err = service.EnsurePermission(context.Background(), "invoices", authz.Action("manage"), "")
	require.Error(t, err)
}

func TestServiceSetRolePermissionsInvalidatesRole(t *testing.T) {
	repo := newStubRepo()
	inv := &recordingInvalidator{}
	service := authz.NewService(repo, inv)

	roleID := uuid.New()
	perms := []uuid.UUID{uuid.New(), uuid.New()}
	require.NoError(t, service.SetRolePermissions(context.Background(), roleID, perms))

	assert.Equal(t, roleID, repo.replacedRole)
	assert.Equal(t, perms, repo.replacedPerms)
	assert.Equal(t, []uuid.UUID{roleID}, inv.roles)
}

func TestServiceAssignRoleInvalidatesUser(t *testing.T) {
	repo := newStubRepo()
	repo.assignEmail = "a@b.c"
	repo.clearEmail = "a@b.c"
	inv := &recordingInvalidator{}
	service := authz.NewService(repo, inv)

	require.NoError(t, service.AssignRole(context.Background(), uuid.New(), uuid.New()))
	require.NoError(t, service.ClearRole(context.Background(), uuid.New()))
	assert.Equal(t, []string{"a@b.c", "a@b.c"}, inv.users)
}

// deleteOrderInvalidator records whether the delete had already been applied
// when each invalidation arrived.
type deleteOrderInvalidator struct {
	repo        *stubRepo
	users       []string
	afterDelete bool
}

func (d *deleteOrderInvalidator) InvalidateUser(ctx context.Context, identity string) {
	d.users = append(d.users, identity)
	d.afterDelete = d.repo.deletedRole != uuid.Nil
}

func (d *deleteOrderInvalidator) InvalidateRole(ctx context.Context, roleID uuid.UUID) {}

func TestServiceDeleteRoleInvalidatesMembersAfterDelete(t *testing.T) {
	repo := newStubRepo()
	roleID := uuid.New()
	repo.emailsByRole[roleID] = []string{"a@b.c", "d@e.f"}
	inv := &deleteOrderInvalidator{repo: repo}
	service := authz.NewService(repo, inv)

	require.NoError(t, service.DeleteRole(context.Background(), roleID))

	// The member list is captured before the delete (it is gone afterwards)
	// but the cache drop happens after, so a resolution racing the delete
	// cannot re-fill the cache with the dead role's grants.
	assert.Equal(t, roleID, repo.deletedRole)
	assert.ElementsMatch(t, []string{"a@b.c", "d@e.f"}, inv.users)
	assert.True(t, inv.afterDelete)
	assert.NotContains(t, repo.emailsByRole, roleID)
}

func TestServiceWorksWithoutInvalidator(t *testing.T) {
	repo := newStubRepo()
	repo.assignEmail = "a@b.c"
	service := authz.NewService(repo, nil)

	require.NoError(t, service.AssignRole(context.Background(), uuid.New(), uuid.New()))
	require.NoError(t, service.SetRolePermissions(context.Background(), uuid.New(), nil))
}
