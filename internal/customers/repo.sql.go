package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

// List returns a page of customers matching the optional search term.
func (r *Repository) List(ctx context.Context, query string, limit, offset int) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, image_url, created_at, updated_at
		FROM customers
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2 OFFSET $3`, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// Count returns the number of customers matching the optional search term.
func (r *Repository) Count(ctx context.Context, query string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM customers
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')`, query).
		Scan(&total)
	return total, err
}

// Get fetches a customer by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, image_url, created_at, updated_at
		FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, shared.ErrNotFound
	}
	return c, err
}

// Create inserts a customer.
func (r *Repository) Create(ctx context.Context, name, email, imageURL string) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customers (id, name, email, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, image_url, created_at, updated_at`,
		uuid.New(), name, email, imageURL).
		Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return Customer{}, shared.ErrDuplicate
	}
	return c, err
}

// Update rewrites a customer's fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, email, imageURL string) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `
		UPDATE customers SET name = $2, email = $3, image_url = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, email, image_url, created_at, updated_at`,
		id, name, email, imageURL).
		Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, shared.ErrNotFound
	}
	if isUniqueViolation(err) {
		return Customer{}, shared.ErrDuplicate
	}
	return c, err
}

// Delete removes a customer.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
