package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
)

// ListingService implements ports.ListingService.
type ListingService struct {
	posts  ports.PostRepository
	groups ports.GroupRepository
	users  ports.UserRepository
	cache  ports.PageCache
	logger zerolog.Logger
}

// NewListingService wires the read side. cache may be nil.
func NewListingService(
	posts ports.PostRepository,
	groups ports.GroupRepository,
	users ports.UserRepository,
	cache ports.PageCache,
	logger zerolog.Logger,
) *ListingService {
	return &ListingService{posts: posts, groups: groups, users: users, cache: cache, logger: logger}
}

// ListPosts returns one page of posts, newest first. Pages past the end come
// back empty rather than as an error.
func (s *ListingService) ListPosts(ctx context.Context, input ports.ListPostsInput) (*ports.ListPostsResult, error) {
	number := input.Page
	if number < 1 {
		number = 1
	}

	key := listingKey(input, number)
	if s.cache != nil {
		var cached ports.ListPostsResult
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("listing cache read failed")
		} else if found {
			cached.Cached = true
			return &cached, nil
		}
	}

	result := &ports.ListPostsResult{}
	var filter ports.ListPostsFilter

	switch {
	case input.GroupSlug != "":
		group, err := s.groups.FindBySlug(ctx, input.GroupSlug)
		if err != nil {
			return nil, err
		}
		filter.GroupID = group.ID
		result.Group = group
	case input.AuthorUsername != "":
		author, err := s.users.FindByUsername(ctx, input.AuthorUsername)
		if err != nil {
			return nil, err
		}
		a := publicUser(*author)
		filter.AuthorID = a.ID
		result.Author = &a
	}

	if number > domain.MaxPageNumber {
		total, err := s.posts.Count(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("count posts: %w", err)
		}
		result.Page = domain.NewPage(number, total)
		return result, nil
	}

	page := domain.NewPage(number, 0)
	filter.Offset = page.Offset()
	filter.Limit = domain.PageSize

	items, total, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	result.Page = domain.NewPage(number, total)
	if items != nil {
		result.Page.Items = items
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("listing cache write failed")
		}
	}

	return result, nil
}

func (s *ListingService) GetGroup(ctx context.Context, slug string) (*domain.Group, error) {
	return s.groups.FindBySlug(ctx, slug)
}

// GetPost returns a post together with how many posts its author has written.
func (s *ListingService) GetPost(ctx context.Context, id int64) (*ports.PostDetail, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.posts.Count(ctx, ports.ListPostsFilter{AuthorID: post.Author.ID})
	if err != nil {
		return nil, fmt.Errorf("count author posts: %w", err)
	}

	return &ports.PostDetail{Post: post, AuthorPostsCount: count}, nil
}

func (s *ListingService) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	return s.groups.List(ctx)
}

// listingKey mirrors the URL the listing is served under.
func listingKey(input ports.ListPostsInput, page int) string {
	path := "/"
	switch {
	case input.GroupSlug != "":
		path = "/group/" + url.PathEscape(input.GroupSlug) + "/"
	case input.AuthorUsername != "":
		path = "/profile/" + url.PathEscape(input.AuthorUsername) + "/"
	}
	return path + "?page=" + strconv.Itoa(page)
}
