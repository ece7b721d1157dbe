package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atlasdash/atlasdash/internal/authz"
)

func TestPermissionName(t *testing.T) {
	assert.Equal(t, "customers.read", authz.PermissionName("customers", authz.ActionRead))
	assert.Equal(t, "posts.delete", authz.PermissionName("posts", authz.ActionDelete))
}

func TestActionValid(t *testing.T) {
	for _, a := range []authz.Action{authz.ActionCreate, authz.ActionRead, authz.ActionUpdate, authz.ActionDelete} {
		assert.True(t, a.Valid(), string(a))
	}
	assert.False(t, authz.Action("manage").Valid())
	assert.False(t, authz.Action("").Valid())
	assert.False(t, authz.Action("READ").Valid())
}

func TestPermissionWellFormed(t *testing.T) {
	ok := authz.Permission{Name: "posts.read", Resource: "posts", Action: "read"}
	assert.True(t, ok.WellFormed())

	mismatch := authz.Permission{Name: "posts.view", Resource: "posts", Action: "read"}
	assert.False(t, mismatch.WellFormed())

	badAction := authz.Permission{Name: "posts.manage", Resource: "posts", Action: "manage"}
	assert.False(t, badAction.WellFormed())
}

func TestPermissionSet(t *testing.T) {
	set := authz.NewPermissionSet("a.read", "b.read", "a.read")
	assert.Len(t, set, 2)
	assert.True(t, set.Has("a.read"))
	assert.False(t, set.Has("c.read"))
	assert.ElementsMatch(t, []string{"a.read", "b.read"}, set.Names())
}
