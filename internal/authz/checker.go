package authz

import "context"

// Checker answers allow/deny for a (resource, action) pair. It is a pure
// decision function over the resolver's output: there is no role-name fast
// path here, superuser roles are simply seeded with every permission.
type Checker struct {
	source PermissionSource
}

// NewChecker constructs a Checker over the given permission source.
func NewChecker(source PermissionSource) *Checker {
	return &Checker{source: source}
}

// CanAccess reports whether the identity holds the canonical permission for
// resource and action. A missing identity or an identity with no grants is a
// deny, not an error; an error is returned only when the permission set could
// not be resolved at all.
func (c *Checker) CanAccess(ctx context.Context, identity, resource string, action Action) (bool, error) {
	if identity == "" {
		return false, nil
	}
	set, err := c.source.ResolvePermissions(ctx, identity)
	if err != nil {
		return false, err
	}
	return set.Has(PermissionName(resource, action)), nil
}
