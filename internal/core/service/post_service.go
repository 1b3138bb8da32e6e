package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
)

// PostService implements ports.AuthoringService.
type PostService struct {
	posts  ports.PostRepository
	groups ports.GroupRepository
	images ports.ImageStore
	cache  ports.PageCache
	logger zerolog.Logger
	now    func() time.Time
}

// NewPostService wires the authoring use cases. images and cache may be nil:
// without an image store uploads are rejected, without a cache nothing is
// invalidated.
func NewPostService(
	posts ports.PostRepository,
	groups ports.GroupRepository,
	images ports.ImageStore,
	cache ports.PageCache,
	logger zerolog.Logger,
) *PostService {
	return &PostService{
		posts:  posts,
		groups: groups,
		images: images,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// CreatePost validates and stores a new post written by input.Author.
func (s *PostService) CreatePost(ctx context.Context, input ports.CreatePostInput) (*domain.Post, error) {
	if input.Author == nil || input.Author.ID == 0 {
		return nil, domain.ErrUnauthenticated
	}

	text, err := cleanText(input.Text)
	if err != nil {
		return nil, err
	}

	group, err := s.resolveGroup(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		Text:    text,
		PubDate: s.now().UTC(),
		Author:  publicUser(*input.Author),
		Group:   group,
	}

	if input.Image != nil {
		name, err := s.saveImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		post.Image = name
	}

	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error().Err(err).Str("author", post.Author.Username).Msg("failed to create post")
		s.discardImage(ctx, post.Image)
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info().Int64("post_id", post.ID).Str("author", post.Author.Username).Msg("post created")

	return post, nil
}

// EditPost applies the supplied fields of input to an existing post. Only the
// post's author may edit it; anyone else gets domain.ErrNotAuthor and the
// post is left as it was.
func (s *PostService) EditPost(ctx context.Context, input ports.EditPostInput) (*domain.Post, error) {
	if input.Editor == nil || input.Editor.ID == 0 {
		return nil, domain.ErrUnauthenticated
	}

	post, err := s.posts.FindByID(ctx, input.PostID)
	if err != nil {
		return nil, err
	}

	if !post.IsAuthoredBy(*input.Editor) {
		s.logger.Warn().
			Int64("post_id", post.ID).
			Str("editor", input.Editor.Username).
			Msg("edit rejected: not the author")
		return nil, domain.ErrNotAuthor
	}

	updated := *post
	if input.Text != nil {
		text, err := cleanText(*input.Text)
		if err != nil {
			return nil, err
		}
		updated.Text = text
	}

	if input.GroupID != nil {
		group, err := s.resolveGroup(ctx, *input.GroupID)
		if err != nil {
			return nil, err
		}
		updated.Group = group
	}

	if input.ClearImage {
		updated.Image = ""
	}
	if input.Image != nil {
		name, err := s.saveImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		updated.Image = name
	}

	if err := s.posts.Update(ctx, &updated); err != nil {
		s.logger.Error().Err(err).Int64("post_id", post.ID).Msg("failed to update post")
		if input.Image != nil {
			s.discardImage(ctx, updated.Image)
		}
		return nil, fmt.Errorf("edit post: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info().Int64("post_id", post.ID).Msg("post edited")

	return &updated, nil
}

func (s *PostService) resolveGroup(ctx context.Context, id int64) (*domain.Group, error) {
	if id == 0 {
		return nil, nil
	}
	g, err := s.groups.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			return nil, domain.ErrUnknownGroup
		}
		return nil, fmt.Errorf("resolve group: %w", err)
	}
	return g, nil
}

func (s *PostService) saveImage(ctx context.Context, img *ports.ImageUpload) (string, error) {
	if s.images == nil {
		return "", domain.NewValidationError("image", "image uploads are disabled")
	}
	name, err := s.images.Save(ctx, img.Filename, img.Content)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidImage) {
			return "", domain.NewValidationError("image", domain.ErrInvalidImage.Error())
		}
		return "", fmt.Errorf("save image: %w", err)
	}
	return name, nil
}

// discardImage removes a file saved for a write that did not persist.
func (s *PostService) discardImage(ctx context.Context, name string) {
	if name == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, name); err != nil {
		s.logger.Warn().Err(err).Str("image", name).Msg("failed to remove orphaned image")
	}
}

// invalidate drops cached listings after a write. A failure only means
// readers may see the old listing until the entries expire.
func (s *PostService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear listing cache")
	}
}

func cleanText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.NewValidationError("text", "empty text")
	}
	return text, nil
}

// publicUser strips credentials before a user is embedded in a post.
func publicUser(u domain.User) domain.User {
	u.PasswordHash = ""
	return u
}
