package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yatube/yatube/internal/core/domain"
)

// GroupRepository implements ports.GroupRepository.
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, g *domain.Group) error {
	rec := groupRecord{Title: g.Title, Slug: g.Slug, Description: g.Description}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrGroupExists
		}
		return fmt.Errorf("insert group: %w", err)
	}
	g.ID = rec.ID
	return nil
}

func (r *GroupRepository) FindBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	var rec groupRecord
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&rec).Error
	return groupResult(rec, err)
}

func (r *GroupRepository) FindByID(ctx context.Context, id int64) (*domain.Group, error) {
	var rec groupRecord
	err := r.db.WithContext(ctx).First(&rec, id).Error
	return groupResult(rec, err)
}

func (r *GroupRepository) List(ctx context.Context) ([]*domain.Group, error) {
	var recs []groupRecord
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	out := make([]*domain.Group, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func groupResult(rec groupRecord, err error) (*domain.Group, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("find group: %w", err)
	}
	return rec.toDomain(), nil
}
