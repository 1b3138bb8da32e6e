package ports

import (
	"context"

	"github.com/yatube/yatube/internal/core/domain"
)

type CreateGroupInput struct {
	Title       string
	Slug        string
	Description string
}

// GroupService manages groups out of band (admin API, seeding).
type GroupService interface {
	CreateGroup(ctx context.Context, input CreateGroupInput) (*domain.Group, error)
}
