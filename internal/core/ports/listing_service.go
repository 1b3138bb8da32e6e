package ports

import (
	"context"

	"github.com/yatube/yatube/internal/core/domain"
)

// ListPostsInput selects a listing. At most one of GroupSlug and
// AuthorUsername is expected; GroupSlug wins if both are set.
type ListPostsInput struct {
	GroupSlug      string
	AuthorUsername string
	Page           int
}

// ListPostsResult is one page of a listing plus the group or author it was
// filtered by.
type ListPostsResult struct {
	Page   domain.Page   `json:"page"`
	Group  *domain.Group `json:"group,omitempty"`
	Author *domain.User  `json:"author,omitempty"`

	// Cached reports whether the result was served from the page cache.
	Cached bool `json:"-"`
}

// PostDetail is a single post with the author's total post count.
type PostDetail struct {
	Post             *domain.Post
	AuthorPostsCount int64
}

// ListingService serves read-only views of posts and groups.
type ListingService interface {
	ListPosts(ctx context.Context, input ListPostsInput) (*ListPostsResult, error)
	GetGroup(ctx context.Context, slug string) (*domain.Group, error)
	GetPost(ctx context.Context, id int64) (*PostDetail, error)
	ListGroups(ctx context.Context) ([]*domain.Group, error)
}
