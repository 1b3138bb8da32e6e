package handler

import (
	"github.com/yatube/yatube/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx JSON responses.
type errorResponse struct {
	Error string `json:"error"`
}

// Template names.
const (
	TemplateIndex      = "posts/index.html"
	TemplateGroupList  = "posts/group_list.html"
	TemplateProfile    = "posts/profile.html"
	TemplatePostDetail = "posts/post_detail.html"
	TemplatePostForm   = "posts/create_post.html"
	TemplateSignup     = "users/signup.html"
	TemplateLogin      = "users/login.html"
	TemplateNotFound   = "core/404.html"
	TemplateError      = "core/error.html"
)

// nonFieldError keys form errors that belong to no single input.
const nonFieldError = "__all__"

// --- HTML page models ---

// Layout is embedded in every page model. It carries the viewer for the
// navigation bar.
type Layout struct {
	Viewer *domain.User
}

type IndexPage struct {
	Layout
	PageObj domain.Page
}

type GroupPage struct {
	Layout
	Group   *domain.Group
	PageObj domain.Page
}

type ProfilePage struct {
	Layout
	Author  *domain.User
	PageObj domain.Page
}

type PostDetailPage struct {
	Layout
	Post             *domain.Post
	AuthorPostsCount int64
}

// CanEdit reports whether the viewer wrote the post.
func (p PostDetailPage) CanEdit() bool {
	return p.Viewer != nil && p.Post != nil && p.Post.IsAuthoredBy(*p.Viewer)
}

// PostFormPage backs both create and edit. Post is nil and IsEdit false on
// create.
type PostFormPage struct {
	Layout
	Form   PostForm
	IsEdit bool
	Post   *domain.Post
}

type SignupPage struct {
	Layout
	Form SignupForm
}

type LoginPage struct {
	Layout
	Form LoginForm
	Next string
}

type ErrorPage struct {
	Layout
	Code    int
	Message string
	Path    string
}

// --- Forms ---

type fieldText struct {
	Label string
	Help  string
}

var postFormFields = map[string]fieldText{
	"text":  {Label: "Post text", Help: "Enter the post text"},
	"group": {Label: "Group", Help: "Choose a group"},
	"image": {Label: "Image", Help: "Attach a picture"},
}

// Errors maps form field names to messages.
type Errors map[string]string

func (e Errors) Get(field string) string { return e[field] }
func (e Errors) Any() bool               { return len(e) > 0 }

// PostForm holds the submitted or current values of the post form.
type PostForm struct {
	Text    string
	GroupID int64
	Image   string
	Groups  []*domain.Group
	Errors  Errors
}

func (f PostForm) Label(field string) string { return postFormFields[field].Label }
func (f PostForm) Help(field string) string  { return postFormFields[field].Help }

// Selected reports whether id is the chosen group.
func (f PostForm) Selected(id int64) bool { return f.GroupID == id }

type SignupForm struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Errors    Errors
}

type LoginForm struct {
	Username string
	Errors   Errors
}

// --- Request / Response types ---

type postFormRequest struct {
	Text       string `form:"text"`
	Group      string `form:"group"`
	ClearImage bool   `form:"image-clear"`
}

type signupRequest struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name"  validate:"max=150"`
	Username  string `form:"username"   validate:"required,max=150,username"`
	Email     string `form:"email"      validate:"omitempty,email"`
	Password1 string `form:"password1"  validate:"required,min=8"`
	Password2 string `form:"password2"  validate:"required,eqfield=Password1"`
}

type loginFormRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

type createGroupRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Slug        string `json:"slug"        validate:"required,max=100,slug"`
	Description string `json:"description" validate:"required"`
}

type groupsResponse struct {
	Groups []*domain.Group `json:"groups"`
}
