package posts

import (
	"context"
	"errors"

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

const postColumns = `id, title, content, COALESCE(excerpt, ''), COALESCE(author, ''), published, created_at, updated_at`

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Excerpt, &p.Author, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns a page of posts, optionally only published ones.
func (r *Repository) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE ($1 = false OR published)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, publishedOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Count returns the number of posts, optionally only published ones.
func (r *Repository) Count(ctx context.Context, publishedOnly bool) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM posts WHERE ($1 = false OR published)`, publishedOnly).Scan(&total)
	return total, err
}

// Get fetches a post by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Post, error) {
	p, err := scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, shared.ErrNotFound
	}
	return p, err
}

// Create inserts a post.
func (r *Repository) Create(ctx context.Context, title, content, excerpt, author string, published bool) (Post, error) {
	return scanPost(r.pool.QueryRow(ctx, `
		INSERT INTO posts (id, title, content, excerpt, author, published)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING `+postColumns,
		uuid.New(), title, content, excerpt, author, published))
}

// Update rewrites a post.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, content, excerpt, author string, published bool) (Post, error) {
	p, err := scanPost(r.pool.QueryRow(ctx, `
		UPDATE posts
		SET title = $2, content = $3, excerpt = NULLIF($4, ''), author = NULLIF($5, ''), published = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+postColumns,
		id, title, content, excerpt, author, published))
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, shared.ErrNotFound
	}
	return p, err
}

// Delete removes a post.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
