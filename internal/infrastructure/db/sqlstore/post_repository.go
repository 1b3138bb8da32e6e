package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
)

// PostRepository implements ports.PostRepository.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	rec := postRecord{
		Text:     p.Text,
		PubDate:  p.PubDate.UTC(),
		AuthorID: p.Author.ID,
		GroupID:  nullableID(p.GroupID()),
		Image:    p.Image,
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) && r.missingGroup(ctx, p.GroupID()) {
			return domain.ErrUnknownGroup
		}
		return fmt.Errorf("insert post: %w", err)
	}
	p.ID = rec.ID
	return nil
}

// missingGroup tells a dangling group reference apart from the other
// foreign keys on the posts table.
func (r *PostRepository) missingGroup(ctx context.Context, groupID int64) bool {
	if groupID == 0 {
		return false
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&groupRecord{}).Where("id = ?", groupID).Count(&n).Error; err != nil {
		return false
	}
	return n == 0
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	var rec postRecord
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return rec.toDomain(), nil
}

// Update rewrites the mutable fields. Author and pub date are never touched.
func (r *PostRepository) Update(ctx context.Context, p *domain.Post) error {
	res := r.db.WithContext(ctx).
		Model(&postRecord{ID: p.ID}).
		Updates(map[string]interface{}{
			"text":     p.Text,
			"group_id": nullableID(p.GroupID()),
			"image":    p.Image,
		})
	if res.Error != nil {
		return fmt.Errorf("update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) List(ctx context.Context, f ports.ListPostsFilter) ([]*domain.Post, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	if f.Offset < 0 || int64(f.Offset) >= total {
		return []*domain.Post{}, total, nil
	}

	q := r.filtered(ctx, f).
		Preload("Author").
		Preload("Group").
		Order("pub_date DESC").
		Order("id DESC").
		Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var recs []postRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	out := make([]*domain.Post, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, total, nil
}

func (r *PostRepository) Count(ctx context.Context, f ports.ListPostsFilter) (int64, error) {
	var n int64
	if err := r.filtered(ctx, f).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (r *PostRepository) filtered(ctx context.Context, f ports.ListPostsFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&postRecord{})
	if f.GroupID != 0 {
		q = q.Where("group_id = ?", f.GroupID)
	}
	if f.AuthorID != 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	return q
}
