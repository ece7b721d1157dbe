package invoices

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlasdash/atlasdash/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns a page of invoices joined with customer info, newest first.
// The search term matches customer name/email or invoice status.
func (r *Repository) List(ctx context.Context, query string, limit, offset int) ([]Row, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.customer_id, i.amount, i.status, i.date,
		       c.name, c.email, c.image_url
		FROM invoices i
		JOIN customers c ON i.customer_id = c.id
		WHERE ($1 = '' OR c.name ILIKE '%' || $1 || '%' OR c.email ILIKE '%' || $1 || '%' OR i.status ILIKE '%' || $1 || '%')
		ORDER BY i.date DESC, i.id
		LIMIT $2 OFFSET $3`, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.CustomerID, &row.Amount, &row.Status, &row.Date,
			&row.CustomerName, &row.CustomerEmail, &row.CustomerImage); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Count returns the number of invoices matching the search term.
func (r *Repository) Count(ctx context.Context, query string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM invoices i
		JOIN customers c ON i.customer_id = c.id
		WHERE ($1 = '' OR c.name ILIKE '%' || $1 || '%' OR c.email ILIKE '%' || $1 || '%' OR i.status ILIKE '%' || $1 || '%')`, query).
		Scan(&total)
	return total, err
}

// Get fetches an invoice by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx, `
		SELECT id, customer_id, amount, status, date FROM invoices WHERE id = $1`, id).
		Scan(&inv.ID, &inv.CustomerID, &inv.Amount, &inv.Status, &inv.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, shared.ErrNotFound
	}
	return inv, err
}

// Create inserts an invoice.
func (r *Repository) Create(ctx context.Context, customerID uuid.UUID, amount int64, status Status, date time.Time) (Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx, `
		INSERT INTO invoices (id, customer_id, amount, status, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, customer_id, amount, status, date`,
		uuid.New(), customerID, amount, status, date).
		Scan(&inv.ID, &inv.CustomerID, &inv.Amount, &inv.Status, &inv.Date)
	return inv, err
}

// Update rewrites an invoice.
func (r *Repository) Update(ctx context.Context, id, customerID uuid.UUID, amount int64, status Status, date time.Time) (Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx, `
		UPDATE invoices SET customer_id = $2, amount = $3, status = $4, date = $5
		WHERE id = $1
		RETURNING id, customer_id, amount, status, date`,
		id, customerID, amount, status, date).
		Scan(&inv.ID, &inv.CustomerID, &inv.Amount, &inv.Status, &inv.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, shared.ErrNotFound
	}
	return inv, err
}

// Delete removes an invoice.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
