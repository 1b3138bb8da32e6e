package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubPostRepo struct {
	posts     map[int64]*domain.Post
	nextID    int64
	createErr error
	updateErr error
	listCalls int
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{posts: make(map[int64]*domain.Post)}
}

func (r *stubPostRepo) Create(_ context.Context, p *domain.Post) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	p.ID = r.nextID
	clone := *p
	r.posts[p.ID] = &clone
	return nil
}

func (r *stubPostRepo) FindByID(_ context.Context, id int64) (*domain.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubPostRepo) Update(_ context.Context, p *domain.Post) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.posts[p.ID]; !ok {
		return domain.ErrPostNotFound
	}
	clone := *p
	r.posts[p.ID] = &clone
	return nil
}

// List applies the same filters and ordering the real repositories use.
func (r *stubPostRepo) List(ctx context.Context, f ports.ListPostsFilter) ([]*domain.Post, int64, error) {
	r.listCalls++
	matched := r.filter(f)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PubDate.Equal(matched[j].PubDate) {
			return matched[i].PubDate.After(matched[j].PubDate)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []*domain.Post{}, total, nil
	}
	end := f.Offset + f.Limit
	if f.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[f.Offset:end], total, nil
}

func (r *stubPostRepo) Count(_ context.Context, f ports.ListPostsFilter) (int64, error) {
	return int64(len(r.filter(f))), nil
}

func (r *stubPostRepo) filter(f ports.ListPostsFilter) []*domain.Post {
	var matched []*domain.Post
	for _, p := range r.posts {
		if f.GroupID != 0 && p.GroupID() != f.GroupID {
			continue
		}
		if f.AuthorID != 0 && p.Author.ID != f.AuthorID {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}
	return matched
}

type stubGroupRepo struct {
	groups map[int64]*domain.Group
	nextID int64
}

func newStubGroupRepo() *stubGroupRepo {
	return &stubGroupRepo{groups: make(map[int64]*domain.Group)}
}

func (r *stubGroupRepo) Create(_ context.Context, g *domain.Group) error {
	for _, existing := range r.groups {
		if existing.Slug == g.Slug {
			return domain.ErrGroupExists
		}
	}
	r.nextID++
	g.ID = r.nextID
	clone := *g
	r.groups[g.ID] = &clone
	return nil
}

func (r *stubGroupRepo) FindBySlug(_ context.Context, slug string) (*domain.Group, error) {
	for _, g := range r.groups {
		if g.Slug == slug {
			clone := *g
			return &clone, nil
		}
	}
	return nil, domain.ErrGroupNotFound
}

func (r *stubGroupRepo) FindByID(_ context.Context, id int64) (*domain.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	clone := *g
	return &clone, nil
}

func (r *stubGroupRepo) List(_ context.Context) ([]*domain.Group, error) {
	out := make([]*domain.Group, 0, len(r.groups))
	for _, g := range r.groups {
		clone := *g
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if _, exists := r.users[u.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	clone := *u
	clone.ID = r.nextID
	r.users[u.Username] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// ---------------------------------------------------------------------------
// Stub cache and image store
// ---------------------------------------------------------------------------

// stubCache keeps values as-is; Get copies them into dest when the types match.
type stubCache struct {
	entries map[string]ports.ListPostsResult
	clears  int
	getErr  error
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]ports.ListPostsResult)}
}

func (c *stubCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	v, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	out, ok := dest.(*ports.ListPostsResult)
	if !ok {
		return false, errors.New("unexpected cache destination")
	}
	*out = v
	return true, nil
}

func (c *stubCache) Set(_ context.Context, key string, value any) error {
	switch v := value.(type) {
	case *ports.ListPostsResult:
		c.entries[key] = *v
	case ports.ListPostsResult:
		c.entries[key] = v
	default:
		return errors.New("unexpected cache value")
	}
	return nil
}

func (c *stubCache) Clear(_ context.Context) error {
	c.clears++
	c.entries = make(map[string]ports.ListPostsResult)
	return nil
}

type stubImageStore struct {
	saved   []string
	deleted []string
}

func (s *stubImageStore) Save(_ context.Context, filename string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(string(data), "IMG") {
		return "", domain.ErrInvalidImage
	}
	name := "posts/" + filename
	s.saved = append(s.saved, name)
	return name, nil
}

func (s *stubImageStore) Delete(_ context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	return nil
}
