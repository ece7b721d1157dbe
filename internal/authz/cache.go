package authz

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "authz:perms:"

// CachedResolver decorates a PermissionSource with a Redis cache keyed by
// identity. Every write to the graph must invalidate the affected identities,
// otherwise the cache would reintroduce the unbounded staleness the
// role-only credential design exists to avoid; Service routes all graph
// writes through the invalidation hooks.
//
// Cache failures are never decision failures: a Redis error falls through to
// the live resolver and is only logged.
type CachedResolver struct {
	source PermissionSource
	repo   Repository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedResolver constructs a CachedResolver.
func NewCachedResolver(source PermissionSource, repo Repository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedResolver {
	return &CachedResolver{source: source, repo: repo, client: client, ttl: ttl, logger: logger}
}

// ResolvePermissions serves from cache when possible, resolving and filling
// on miss.
func (c *CachedResolver) ResolvePermissions(ctx context.Context, identity string) (PermissionSet, error) {
	key := cacheKeyPrefix + identity

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var names []string
		if jsonErr := json.Unmarshal(payload, &names); jsonErr == nil {
			return NewPermissionSet(names...), nil
		}
		// Unreadable entry: drop it and resolve live.
		_ = c.client.Del(ctx, key).Err()
	} else if err != redis.Nil && c.logger != nil {
		c.logger.Warn("permission cache read failed", slog.Any("error", err))
	}

	set, err := c.source.ResolvePermissions(ctx, identity)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(set.Names()); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil && c.logger != nil {
			c.logger.Warn("permission cache write failed", slog.Any("error", setErr))
		}
	}
	return set, nil
}

// InvalidateUser drops the cached set for one identity.
func (c *CachedResolver) InvalidateUser(ctx context.Context, identity string) {
	if err := c.client.Del(ctx, cacheKeyPrefix+identity).Err(); err != nil && c.logger != nil {
		c.logger.Warn("permission cache invalidate user failed",
			slog.String("identity", identity), slog.Any("error", err))
	}
}

// InvalidateRole drops the cached sets of every identity currently assigned
// to the role. Called after any edit to the role's grant set.
func (c *CachedResolver) InvalidateRole(ctx context.Context, roleID uuid.UUID) {
	emails, err := c.repo.EmailsByRole(ctx, roleID)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("permission cache invalidate role failed",
				slog.String("role_id", roleID.String()), slog.Any("error", err))
		}
		return
	}
	for _, email := range emails {
		c.InvalidateUser(ctx, email)
	}
}

var _ PermissionSource = (*CachedResolver)(nil)
