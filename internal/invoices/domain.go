// Package invoices implements invoice management. All handlers are
// enforcement points gated on invoices.* permissions.
package invoices

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates invoice states.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Valid reports whether the status is a known member.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// Invoice represents a customer invoice. Amount is in cents.
type Invoice struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Amount     int64     `json:"amount"`
	Status     Status    `json:"status"`
	Date       time.Time `json:"date"`
}

// Row is an invoice joined with its customer for listings.
type Row struct {
	Invoice
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerImage string `json:"customer_image_url"`
}
