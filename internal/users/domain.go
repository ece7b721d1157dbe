// Package users implements account administration. All handlers are
// enforcement points gated on users.* and roles.* permissions.
package users

import (
	"time"

	"github.com/google/uuid"
)

// User is an account as shown to administrators. The credential hash never
// leaves the repository layer.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	RoleID    *uuid.UUID `json:"role_id,omitempty"`
	RoleName  string     `json:"role_name,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
