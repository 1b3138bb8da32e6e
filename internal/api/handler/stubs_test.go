package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub services
// ---------------------------------------------------------------------------

type stubListing struct {
	listFn   func(ctx context.Context, in ports.ListPostsInput) (*ports.ListPostsResult, error)
	getFn    func(ctx context.Context, id int64) (*ports.PostDetail, error)
	groupsFn func(ctx context.Context) ([]*domain.Group, error)
}

func (s *stubListing) ListPosts(ctx context.Context, in ports.ListPostsInput) (*ports.ListPostsResult, error) {
	return s.listFn(ctx, in)
}

func (s *stubListing) GetGroup(_ context.Context, slug string) (*domain.Group, error) {
	return nil, domain.ErrGroupNotFound
}

func (s *stubListing) GetPost(ctx context.Context, id int64) (*ports.PostDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubListing) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	if s.groupsFn == nil {
		return []*domain.Group{}, nil
	}
	return s.groupsFn(ctx)
}

type stubAuthoring struct {
	createFn func(ctx context.Context, in ports.CreatePostInput) (*domain.Post, error)
	editFn   func(ctx context.Context, in ports.EditPostInput) (*domain.Post, error)
}

func (s *stubAuthoring) CreatePost(ctx context.Context, in ports.CreatePostInput) (*domain.Post, error) {
	return s.createFn(ctx, in)
}

func (s *stubAuthoring) EditPost(ctx context.Context, in ports.EditPostInput) (*domain.Post, error) {
	return s.editFn(ctx, in)
}

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

type stubGroupService struct {
	createFn func(ctx context.Context, in ports.CreateGroupInput) (*domain.Group, error)
}

func (s *stubGroupService) CreateGroup(ctx context.Context, in ports.CreateGroupInput) (*domain.Group, error) {
	return s.createFn(ctx, in)
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

// recordingRenderer remembers the last template and data it was asked for.
type recordingRenderer struct {
	name string
	data any
}

func (r *recordingRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	r.name = name
	r.data = data
	_, err := io.WriteString(w, name)
	return err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newEcho() (*echo.Echo, *recordingRenderer) {
	e := echo.New()
	e.Validator = NewValidator()
	r := &recordingRenderer{}
	e.Renderer = r
	return e, r
}

func getCtx(e *echo.Echo, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func formCtx(e *echo.Echo, target string, values url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func jsonCtx(e *echo.Echo, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func signIn(c echo.Context, u *domain.User) {
	c.Set("user", u)
}

var (
	author   = &domain.User{ID: 1, Username: "auth", Role: domain.RoleUser}
	stranger = &domain.User{ID: 2, Username: "stranger", Role: domain.RoleUser}
)

func authoredPost(id int64) *domain.Post {
	return &domain.Post{
		ID:     id,
		Text:   "original text",
		Author: *author,
		Group:  &domain.Group{ID: 3, Title: "Test group", Slug: "test-slug"},
		Image:  "posts/old.gif",
	}
}
