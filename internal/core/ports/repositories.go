package ports

import (
	"context"

	"github.com/yatube/yatube/internal/core/domain"
)

// ListPostsFilter carries the query for a page of posts. Zero GroupID or
// AuthorID means no filter on that field.
type ListPostsFilter struct {
	GroupID  int64
	AuthorID int64
	Offset   int
	Limit    int
}

// PostRepository persists posts. Implementations return posts with Author
// and Group populated, ordered by pub_date then id, newest first.
type PostRepository interface {
	// Create assigns the next id to p and stores it.
	Create(ctx context.Context, p *domain.Post) error
	FindByID(ctx context.Context, id int64) (*domain.Post, error)
	// Update writes Text, Group and Image of p in a single atomic operation.
	// Author and PubDate are never touched.
	Update(ctx context.Context, p *domain.Post) error
	// List returns a page of posts matching filter and the total count.
	List(ctx context.Context, filter ListPostsFilter) ([]*domain.Post, int64, error)
	Count(ctx context.Context, filter ListPostsFilter) (int64, error)
}

// GroupRepository persists groups.
type GroupRepository interface {
	Create(ctx context.Context, g *domain.Group) error
	FindBySlug(ctx context.Context, slug string) (*domain.Group, error)
	FindByID(ctx context.Context, id int64) (*domain.Group, error)
	List(ctx context.Context) ([]*domain.Group, error)
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}
