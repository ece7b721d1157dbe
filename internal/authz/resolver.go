package authz

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlasdash/atlasdash/internal/shared"
)

// PermissionSource resolves an identity to its effective permission set.
type PermissionSource interface {
	ResolvePermissions(ctx context.Context, identity string) (PermissionSet, error)
}

// Resolver computes effective permission sets straight from the graph on
// every call. It holds no state between calls; caching is layered on top by
// CachedResolver when wanted.
type Resolver struct {
	repo   Repository
	logger *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(repo Repository, logger *slog.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// ResolvePermissions returns the set of permission names granted by the
// identity's role. An unknown identity or a role-less user yields the empty
// set with no error; only a backing-store failure is an error, and it is
// wrapped as ErrStoreUnavailable so callers never mistake it for a deny.
//
// Rows whose stored name does not match the canonical resource.action
// composition are excluded from the set and logged; one malformed grant must
// not poison the rest of the resolution.
func (r *Resolver) ResolvePermissions(ctx context.Context, identity string) (PermissionSet, error) {
	grants, err := r.repo.UserGrants(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %v", shared.ErrStoreUnavailable, identity, err)
	}

	set := make(PermissionSet, len(grants))
	for _, g := range grants {
		if !Action(g.Action).Valid() || g.Name != PermissionName(g.Resource, Action(g.Action)) {
			if r.logger != nil {
				r.logger.Warn("malformed permission row excluded",
					slog.String("name", g.Name),
					slog.String("resource", g.Resource),
					slog.String("action", g.Action))
			}
			continue
		}
		set[g.Name] = struct{}{}
	}
	return set, nil
}

var _ PermissionSource = (*Resolver)(nil)
