package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
)

const collectionPosts = "posts"

// PostRepository implements ports.PostRepository using MongoDB. Authors and
// groups live in their own collections and are joined in on read.
type PostRepository struct {
	db     *mongo.Database
	col    *mongo.Collection
	users  *UserRepository
	groups *GroupRepository
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{
		db:     db,
		col:    db.Collection(collectionPosts),
		users:  NewUserRepository(db),
		groups: NewGroupRepository(db),
	}
}

// group_id 0 means the post has no group.
type mongoPost struct {
	ID       int64     `bson:"_id"`
	Text     string    `bson:"text"`
	PubDate  time.Time `bson:"pub_date"`
	AuthorID int64     `bson:"author_id"`
	GroupID  int64     `bson:"group_id"`
	Image    string    `bson:"image,omitempty"`
}

var listSort = bson.D{{Key: "pub_date", Value: -1}, {Key: "_id", Value: -1}}

// Create inserts a new post document and assigns its id.
func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, collectionPosts)
	if err != nil {
		return err
	}

	doc := mongoPost{
		ID:       id,
		Text:     p.Text,
		PubDate:  p.PubDate.UTC(),
		AuthorID: p.Author.ID,
		GroupID:  p.GroupID(),
		Image:    p.Image,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	p.ID = id
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoPost
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}

	posts, err := r.hydrate(ctx, []mongoPost{doc})
	if err != nil {
		return nil, err
	}
	return posts[0], nil
}

// Update rewrites the mutable fields. Author and pub date are never touched.
func (r *PostRepository) Update(ctx context.Context, p *domain.Post) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"text":     p.Text,
		"group_id": p.GroupID(),
		"image":    p.Image,
	}}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) List(ctx context.Context, f ports.ListPostsFilter) ([]*domain.Post, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	if f.Offset < 0 || int64(f.Offset) >= total {
		return []*domain.Post{}, total, nil
	}

	opts := options.Find().SetSort(listSort).SetSkip(int64(f.Offset))
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoPost
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode posts: %w", err)
	}

	posts, err := r.hydrate(ctx, docs)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *PostRepository) Count(ctx context.Context, f ports.ListPostsFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, buildFilter(f))
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func buildFilter(f ports.ListPostsFilter) bson.M {
	filter := bson.M{}
	if f.GroupID != 0 {
		filter["group_id"] = f.GroupID
	}
	if f.AuthorID != 0 {
		filter["author_id"] = f.AuthorID
	}
	return filter
}

// hydrate resolves authors and groups for a batch of documents with one
// query per collection.
func (r *PostRepository) hydrate(ctx context.Context, docs []mongoPost) ([]*domain.Post, error) {
	authorIDs := make([]int64, 0, len(docs))
	groupIDs := make([]int64, 0, len(docs))
	for _, d := range docs {
		authorIDs = append(authorIDs, d.AuthorID)
		if d.GroupID != 0 {
			groupIDs = append(groupIDs, d.GroupID)
		}
	}

	authors, err := r.users.findMany(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	groups, err := r.groups.findMany(ctx, groupIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Post, 0, len(docs))
	for _, d := range docs {
		p := &domain.Post{
			ID:      d.ID,
			Text:    d.Text,
			PubDate: d.PubDate.UTC(),
			Author:  authors[d.AuthorID],
			Image:   d.Image,
		}
		if g, ok := groups[d.GroupID]; ok {
			p.Group = g
		}
		out = append(out, p)
	}
	return out, nil
}
