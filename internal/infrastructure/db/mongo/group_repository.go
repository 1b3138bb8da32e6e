package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yatube/yatube/internal/core/domain"
)

const collectionGroups = "groups"

// GroupRepository implements ports.GroupRepository using MongoDB.
type GroupRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewGroupRepository(db *mongo.Database) *GroupRepository {
	return &GroupRepository{db: db, col: db.Collection(collectionGroups)}
}

type mongoGroup struct {
	ID          int64  `bson:"_id"`
	Title       string `bson:"title"`
	Slug        string `bson:"slug"`
	Description string `bson:"description"`
}

func (r *GroupRepository) Create(ctx context.Context, g *domain.Group) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, collectionGroups)
	if err != nil {
		return err
	}

	doc := mongoGroup{ID: id, Title: g.Title, Slug: g.Slug, Description: g.Description}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrGroupExists
		}
		return fmt.Errorf("insert group: %w", err)
	}

	g.ID = id
	return nil
}

func (r *GroupRepository) FindBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *GroupRepository) FindByID(ctx context.Context, id int64) (*domain.Group, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *GroupRepository) List(ctx context.Context) ([]*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoGroup
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}

	out := make([]*domain.Group, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *GroupRepository) findOne(ctx context.Context, filter bson.M) (*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mg mongoGroup
	if err := r.col.FindOne(ctx, filter).Decode(&mg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("find group: %w", err)
	}
	return mg.toDomain(), nil
}

func (r *GroupRepository) findMany(ctx context.Context, ids []int64) (map[int64]*domain.Group, error) {
	out := make(map[int64]*domain.Group, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find groups: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoGroup
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	for _, d := range docs {
		out[d.ID] = d.toDomain()
	}
	return out, nil
}

func (mg mongoGroup) toDomain() *domain.Group {
	return &domain.Group{ID: mg.ID, Title: mg.Title, Slug: mg.Slug, Description: mg.Description}
}
