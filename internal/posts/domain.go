// Package posts implements the blog. Dashboard endpoints are enforcement
// points gated on posts.* permissions; the published listing is public.
package posts

import (
	"time"

	"github.com/google/uuid"
)

// Post represents a blog post.
type Post struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Author    string    `json:"author,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
