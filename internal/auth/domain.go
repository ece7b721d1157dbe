package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the identity store. RoleID is nullable: a
// user without a role authenticates into nothing and resolves to the empty
// permission set.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	RoleID       *uuid.UUID
	RoleName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
