package ports

import (
	"context"
	"io"

	"github.com/yatube/yatube/internal/core/domain"
)

// ImageUpload is an image attached to a create or edit request.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// CreatePostInput carries the data for a new post. Author is the acting
// identity, never taken from the request body.
type CreatePostInput struct {
	Author  *domain.User
	Text    string
	GroupID int64 // 0 = no group
	Image   *ImageUpload
}

// EditPostInput carries an edit. Nil fields are left untouched; a GroupID
// pointing at 0 removes the post from its group.
type EditPostInput struct {
	PostID     int64
	Editor     *domain.User
	Text       *string
	GroupID    *int64
	Image      *ImageUpload
	ClearImage bool
}

// AuthoringService creates and edits posts.
type AuthoringService interface {
	CreatePost(ctx context.Context, input CreatePostInput) (*domain.Post, error)
	EditPost(ctx context.Context, input EditPostInput) (*domain.Post, error)
}
