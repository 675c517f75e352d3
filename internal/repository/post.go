package repository

import (
	"context"

	"kurssite/internal/model"
)

// PostRepository defines data access for blog posts using SQL queries only.
// No business logic here, only persistence.
type PostRepository interface {
	// Create inserts a new post and returns the stored row. A slug that is
	// already taken yields ErrDuplicate.
	Create(ctx context.Context, post *model.Post) (*model.Post, error)

	// FindBySlug returns a post by its slug, or sql.ErrNoRows.
	FindBySlug(ctx context.Context, slug string) (*model.Post, error)

	// ListPublished returns posts whose publish time has passed, newest first.
	ListPublished(ctx context.Context, pq PageQuery) (*PageResult[model.Post], error)

	// Delete removes a post by ID. It returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}
