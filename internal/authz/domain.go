// Package authz implements the role-based access-control core: the
// role/permission graph, the permission resolver and the access checker.
//
// The model is single-role: a user carries at most one role, and a role
// grants a flat set of exact "resource.action" permission names. There is no
// wildcard matching and no inheritance between roles.
package authz

import (
	"time"

	"github.com/google/uuid"
)

// Action is the closed set of operations on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Valid reports whether the action is a member of the closed set.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// PermissionName composes the canonical "<resource>.<action>" permission
// name. Every decision and every stored permission is keyed on this exact
// form; no call site composes the name by hand.
func PermissionName(resource string, action Action) string {
	return resource + "." + string(action)
}

// Role represents a named permission grouping.
type Role struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission represents an atomic capability.
type Permission struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Resource    string    `json:"resource"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
}

// WellFormed reports whether the stored name matches the canonical
// composition of resource and action.
func (p Permission) WellFormed() bool {
	return Action(p.Action).Valid() && p.Name == PermissionName(p.Resource, Action(p.Action))
}

// Grant is one permission row reachable from a user's role.
type Grant struct {
	Name     string
	Resource string
	Action   string
}

// PermissionSet is the effective permission set resolved for an identity.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from permission names.
func NewPermissionSet(names ...string) PermissionSet {
	set := make(PermissionSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Has reports membership of a canonical permission name.
func (s PermissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the member names in unspecified order.
func (s PermissionSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	return names
}
