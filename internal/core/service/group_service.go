package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
)

const maxGroupTitle = 200

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// GroupService implements ports.GroupService.
type GroupService struct {
	groups ports.GroupRepository
	logger zerolog.Logger
}

func NewGroupService(groups ports.GroupRepository, logger zerolog.Logger) *GroupService {
	return &GroupService{groups: groups, logger: logger}
}

func (s *GroupService) CreateGroup(ctx context.Context, input ports.CreateGroupInput) (*domain.Group, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || utf8.RuneCountInString(title) > maxGroupTitle {
		return nil, domain.NewValidationError("title", "title is required and at most 200 characters")
	}
	if !slugPattern.MatchString(input.Slug) {
		return nil, domain.NewValidationError("slug", "slug may contain only letters, digits, hyphens and underscores")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, domain.NewValidationError("description", "description is required")
	}

	g := &domain.Group{Title: title, Slug: input.Slug, Description: description}
	if err := s.groups.Create(ctx, g); err != nil {
		return nil, err
	}

	s.logger.Info().Str("slug", g.Slug).Int64("group_id", g.ID).Msg("group created")
	return g, nil
}
