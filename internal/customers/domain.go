// Package customers implements the customer directory. All handlers are
// enforcement points gated on customers.* permissions.
package customers

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a billing customer.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
