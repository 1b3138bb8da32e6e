package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
)

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// doc builds a bson.D from alternating keys and values.
func doc(pairs ...interface{}) bson.D {
	d := make(bson.D, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		d = append(d, bson.E{Key: pairs[i].(string), Value: pairs[i+1]})
	}
	return d
}

func cursor(coll string, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, "yatube."+coll, mtest.FirstBatch, docs...)
}

// countReply answers the aggregate CountDocuments sends.
func countReply(n int64) bson.D {
	return cursor(collectionPosts, doc("_id", int32(1), "n", n))
}

var pub = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestPostRepository_List(t *testing.T) {
	mt := newMockT(t)

	mt.Run("sorts newest first and joins authors and groups", func(mt *mtest.T) {
		mt.AddMockResponses(
			countReply(12),
			cursor(collectionPosts,
				doc("_id", int64(12), "text", "newest", "pub_date", pub.Add(time.Minute), "author_id", int64(1), "group_id", int64(3)),
				doc("_id", int64(11), "text", "older", "pub_date", pub, "author_id", int64(1), "group_id", int64(0)),
			),
			cursor(collectionUsers, doc("_id", int64(1), "username", "auth", "password_hash", "secret", "role", "user")),
			cursor(collectionGroups, doc("_id", int64(3), "title", "Test group", "slug", "test-slug", "description", "d")),
		)
		repo := NewPostRepository(mt.DB)

		posts, total, err := repo.List(context.Background(), ports.ListPostsFilter{AuthorID: 1, Offset: 10, Limit: domain.PageSize})
		if err != nil {
			mt.Fatalf("List returned error: %v", err)
		}
		if total != 12 || len(posts) != 2 {
			mt.Fatalf("expected 2 of 12 posts, got %d of %d", len(posts), total)
		}

		if posts[0].Group == nil || posts[0].Group.Slug != "test-slug" {
			mt.Fatalf("expected first post in test-slug, got %+v", posts[0].Group)
		}
		if posts[1].Group != nil {
			mt.Fatalf("group_id 0 should mean no group, got %+v", posts[1].Group)
		}
		if posts[0].Author.Username != "auth" || posts[0].Author.PasswordHash != "" {
			mt.Fatalf("unexpected author %+v", posts[0].Author)
		}
		if !posts[0].PubDate.Equal(pub.Add(time.Minute)) {
			mt.Fatalf("unexpected pub date %s", posts[0].PubDate)
		}

		if ev := mt.GetStartedEvent(); ev.CommandName != "aggregate" {
			mt.Fatalf("expected count aggregate first, got %s", ev.CommandName)
		}
		find := mt.GetStartedEvent()
		if find.CommandName != "find" {
			mt.Fatalf("expected find, got %s", find.CommandName)
		}
		elems, err := find.Command.Lookup("sort").Document().Elements()
		if err != nil || len(elems) != 2 {
			mt.Fatalf("unexpected sort document: %v", find.Command.Lookup("sort"))
		}
		if elems[0].Key() != "pub_date" || elems[0].Value().AsInt64() != -1 ||
			elems[1].Key() != "_id" || elems[1].Value().AsInt64() != -1 {
			mt.Fatalf("expected pub_date desc then _id desc, got %v", elems)
		}
		if skip := find.Command.Lookup("skip").AsInt64(); skip != 10 {
			mt.Fatalf("expected skip 10, got %d", skip)
		}
		if limit := find.Command.Lookup("limit").AsInt64(); limit != domain.PageSize {
			mt.Fatalf("expected limit %d, got %d", domain.PageSize, limit)
		}
		if author := find.Command.Lookup("filter", "author_id").AsInt64(); author != 1 {
			mt.Fatalf("expected author filter 1, got %d", author)
		}
	})

	mt.Run("offset past the total skips the find", func(mt *mtest.T) {
		mt.AddMockResponses(countReply(17))
		repo := NewPostRepository(mt.DB)

		posts, total, err := repo.List(context.Background(), ports.ListPostsFilter{Offset: 20, Limit: domain.PageSize})
		if err != nil {
			mt.Fatalf("List returned error: %v", err)
		}
		if posts == nil || len(posts) != 0 || total != 17 {
			mt.Fatalf("expected an empty, non-nil page of 17, got %v / %d", posts, total)
		}
		if n := len(mt.GetAllStartedEvents()); n != 1 {
			mt.Fatalf("expected only the count command, got %d commands", n)
		}
	})

	mt.Run("negative offset is past the end", func(mt *mtest.T) {
		mt.AddMockResponses(countReply(17))
		repo := NewPostRepository(mt.DB)

		posts, total, err := repo.List(context.Background(), ports.ListPostsFilter{Offset: -10, Limit: domain.PageSize})
		if err != nil {
			mt.Fatalf("List returned error: %v", err)
		}
		if len(posts) != 0 || total != 17 {
			mt.Fatalf("expected an empty page of 17, got %d / %d", len(posts), total)
		}
		if n := len(mt.GetAllStartedEvents()); n != 1 {
			mt.Fatalf("expected no skip query, got %d commands", n)
		}
	})
}

// ---------------------------------------------------------------------------
// FindByID / hydrate
// ---------------------------------------------------------------------------

func TestPostRepository_FindByID(t *testing.T) {
	mt := newMockT(t)

	mt.Run("post without group loads only the author", func(mt *mtest.T) {
		mt.AddMockResponses(
			cursor(collectionPosts, doc("_id", int64(5), "text", "hello", "pub_date", pub, "author_id", int64(2), "group_id", int64(0), "image", "posts/a.png")),
			cursor(collectionUsers, doc("_id", int64(2), "username", "leo", "password_hash", "secret", "role", "user")),
		)
		repo := NewPostRepository(mt.DB)

		post, err := repo.FindByID(context.Background(), 5)
		if err != nil {
			mt.Fatalf("FindByID returned error: %v", err)
		}
		if post.ID != 5 || post.Text != "hello" || post.Image != "posts/a.png" {
			mt.Fatalf("unexpected post %+v", post)
		}
		if post.Group != nil {
			mt.Fatalf("expected no group, got %+v", post.Group)
		}
		if post.Author.Username != "leo" || post.Author.PasswordHash != "" {
			mt.Fatalf("unexpected author %+v", post.Author)
		}
		if n := len(mt.GetAllStartedEvents()); n != 2 {
			mt.Fatalf("expected post and user lookups only, got %d commands", n)
		}
	})

	mt.Run("missing post", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(collectionPosts))
		repo := NewPostRepository(mt.DB)

		if _, err := repo.FindByID(context.Background(), 404); !errors.Is(err, domain.ErrPostNotFound) {
			mt.Fatalf("expected ErrPostNotFound, got %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// Create / Update
// ---------------------------------------------------------------------------

func TestPostRepository_Create(t *testing.T) {
	mt := newMockT(t)

	mt.Run("takes the next counter value as id", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc("_id", collectionPosts, "seq", int64(5))}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}),
		)
		repo := NewPostRepository(mt.DB)

		post := &domain.Post{Text: "new", PubDate: pub, Author: domain.User{ID: 1}}
		if err := repo.Create(context.Background(), post); err != nil {
			mt.Fatalf("Create returned error: %v", err)
		}
		if post.ID != 5 {
			mt.Fatalf("expected id 5, got %d", post.ID)
		}

		counter := mt.GetStartedEvent()
		if counter.CommandName != "findAndModify" {
			mt.Fatalf("expected findAndModify, got %s", counter.CommandName)
		}
		if !counter.Command.Lookup("upsert").Boolean() {
			mt.Fatalf("counter update must upsert")
		}
		if inc := counter.Command.Lookup("update", "$inc", "seq").AsInt64(); inc != 1 {
			mt.Fatalf("expected $inc seq 1, got %d", inc)
		}

		insert := mt.GetStartedEvent()
		if insert.CommandName != "insert" {
			mt.Fatalf("expected insert, got %s", insert.CommandName)
		}
		inserted := insert.Command.Lookup("documents", "0").Document()
		if id := inserted.Lookup("_id").AsInt64(); id != 5 {
			mt.Fatalf("expected _id 5, got %d", id)
		}
		if g := inserted.Lookup("group_id").AsInt64(); g != 0 {
			mt.Fatalf("post without group should store group_id 0, got %d", g)
		}
		if _, err := inserted.LookupErr("image"); err == nil {
			mt.Fatalf("empty image should be omitted")
		}
	})
}

func TestPostRepository_Update(t *testing.T) {
	mt := newMockT(t)

	mt.Run("clears image and group", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(1)},
			bson.E{Key: "nModified", Value: int32(1)},
		))
		repo := NewPostRepository(mt.DB)

		post := &domain.Post{ID: 7, Text: "edited", Author: domain.User{ID: 1}}
		if err := repo.Update(context.Background(), post); err != nil {
			mt.Fatalf("Update returned error: %v", err)
		}

		ev := mt.GetStartedEvent()
		if ev.CommandName != "update" {
			mt.Fatalf("expected update, got %s", ev.CommandName)
		}
		set := ev.Command.Lookup("updates", "0", "u", "$set").Document()
		if img := set.Lookup("image").StringValue(); img != "" {
			mt.Fatalf("expected image cleared, got %q", img)
		}
		if g := set.Lookup("group_id").AsInt64(); g != 0 {
			mt.Fatalf("expected group_id 0, got %d", g)
		}
		if text := set.Lookup("text").StringValue(); text != "edited" {
			mt.Fatalf("expected text edited, got %q", text)
		}
		if _, err := set.LookupErr("author_id"); err == nil {
			mt.Fatalf("author must never be rewritten")
		}
		if id := ev.Command.Lookup("updates", "0", "q", "_id").AsInt64(); id != 7 {
			mt.Fatalf("expected update of post 7, got %d", id)
		}
	})

	mt.Run("missing post", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(0)},
			bson.E{Key: "nModified", Value: int32(0)},
		))
		repo := NewPostRepository(mt.DB)

		err := repo.Update(context.Background(), &domain.Post{ID: 404, Text: "x"})
		if !errors.Is(err, domain.ErrPostNotFound) {
			mt.Fatalf("expected ErrPostNotFound, got %v", err)
		}
	})
}
