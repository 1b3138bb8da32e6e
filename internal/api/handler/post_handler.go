package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yatube/yatube/internal/api/metrics"
	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
)

// PostHandler serves the create and edit forms. Both routes sit behind
// LoginRequired.
type PostHandler struct {
	authoring ports.AuthoringService
	listing   ports.ListingService
	log       zerolog.Logger
}

func NewPostHandler(authoring ports.AuthoringService, listing ports.ListingService, log zerolog.Logger) *PostHandler {
	return &PostHandler{authoring: authoring, listing: listing, log: log}
}

// CreateForm godoc
// @Summary      New post form
// @Tags         posts
// @Produce      html
// @Success      200
// @Failure      302  "redirect to login"
// @Router       /create/ [get]
func (h *PostHandler) CreateForm(c echo.Context) error {
	u, err := requireViewer(c)
	if err != nil {
		return err
	}

	groups, err := h.listing.ListGroups(c.Request().Context())
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, TemplatePostForm, PostFormPage{
		Layout: Layout{Viewer: u},
		Form:   PostForm{Groups: groups, Errors: Errors{}},
	})
}

// Create godoc
// @Summary      Publish a post
// @Description  Creates a post authored by the signed-in user and redirects to their profile.
// @Description  Invalid input re-renders the form with errors.
// @Tags         posts
// @Accept       mpfd
// @Produce      html
// @Param        text   formData  string  true   "Post text"
// @Param        group  formData  int     false  "Group ID"
// @Param        image  formData  file    false  "Image"
// @Success      302  "redirect to /profile/{username}/"
// @Router       /create/ [post]
func (h *PostHandler) Create(c echo.Context) error {
	u, err := requireViewer(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var req postFormRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form body")
	}

	groups, err := h.listing.ListGroups(ctx)
	if err != nil {
		return err
	}

	groupID, ok := parseGroupChoice(req.Group)
	form := PostForm{Text: req.Text, GroupID: groupID, Groups: groups, Errors: Errors{}}
	if !ok {
		form.Errors["group"] = "Select a valid choice."
		return h.renderForm(c, form, nil)
	}

	img, release := formImage(c)
	defer release()

	post, err := h.authoring.CreatePost(ctx, ports.CreatePostInput{
		Author:  u,
		Text:    req.Text,
		GroupID: groupID,
		Image:   img,
	})
	if err != nil {
		if field, msg, ok := formError(err); ok {
			form.Errors[field] = msg
			return h.renderForm(c, form, nil)
		}
		return err
	}

	metrics.PostsCreatedTotal.WithLabelValues(strconv.FormatBool(post.Group != nil)).Inc()
	return c.Redirect(http.StatusFound, profileURL(u.Username))
}

// EditForm godoc
// @Summary      Edit post form
// @Description  Only the author sees the form; anyone else is redirected to the post.
// @Tags         posts
// @Produce      html
// @Param        post_id  path  int  true  "Post ID"
// @Success      200
// @Failure      302  "redirect to the post or to login"
// @Failure      404
// @Router       /posts/{post_id}/edit/ [get]
func (h *PostHandler) EditForm(c echo.Context) error {
	u, err := requireViewer(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.loadPost(c)
	if err != nil {
		return err
	}
	if !post.IsAuthoredBy(*u) {
		return c.Redirect(http.StatusFound, postURL(post.ID))
	}

	groups, err := h.listing.ListGroups(ctx)
	if err != nil {
		return err
	}

	return h.renderForm(c, PostForm{
		Text:    post.Text,
		GroupID: post.GroupID(),
		Image:   post.Image,
		Groups:  groups,
		Errors:  Errors{},
	}, post)
}

// Edit godoc
// @Summary      Save post edits
// @Description  Updates text, group and image of a post. Non-authors are redirected
// @Description  to the post and nothing changes.
// @Tags         posts
// @Accept       mpfd
// @Produce      html
// @Param        post_id      path      int     true   "Post ID"
// @Param        text         formData  string  true   "Post text"
// @Param        group        formData  int     false  "Group ID"
// @Param        image        formData  file    false  "Image"
// @Param        image-clear  formData  bool    false  "Remove the current image"
// @Success      302  "redirect to /posts/{post_id}/"
// @Failure      404
// @Router       /posts/{post_id}/edit/ [post]
func (h *PostHandler) Edit(c echo.Context) error {
	u, err := requireViewer(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.loadPost(c)
	if err != nil {
		return err
	}
	if !post.IsAuthoredBy(*u) {
		metrics.PostEditsTotal.WithLabelValues("forbidden").Inc()
		return c.Redirect(http.StatusFound, postURL(post.ID))
	}

	var req postFormRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form body")
	}

	groups, err := h.listing.ListGroups(ctx)
	if err != nil {
		return err
	}

	groupID, ok := parseGroupChoice(req.Group)
	form := PostForm{Text: req.Text, GroupID: groupID, Image: post.Image, Groups: groups, Errors: Errors{}}
	if !ok {
		metrics.PostEditsTotal.WithLabelValues("invalid").Inc()
		form.Errors["group"] = "Select a valid choice."
		return h.renderForm(c, form, post)
	}

	img, release := formImage(c)
	defer release()

	_, err = h.authoring.EditPost(ctx, ports.EditPostInput{
		PostID:     post.ID,
		Editor:     u,
		Text:       &req.Text,
		GroupID:    &groupID,
		Image:      img,
		ClearImage: req.ClearImage,
	})
	switch {
	case errors.Is(err, domain.ErrNotAuthor):
		metrics.PostEditsTotal.WithLabelValues("forbidden").Inc()
		return c.Redirect(http.StatusFound, postURL(post.ID))
	case err != nil:
		if field, msg, ok := formError(err); ok {
			metrics.PostEditsTotal.WithLabelValues("invalid").Inc()
			form.Errors[field] = msg
			return h.renderForm(c, form, post)
		}
		return err
	}

	metrics.PostEditsTotal.WithLabelValues("ok").Inc()
	return c.Redirect(http.StatusFound, postURL(post.ID))
}

func (h *PostHandler) loadPost(c echo.Context) (*domain.Post, error) {
	id, err := postID(c)
	if err != nil {
		return nil, err
	}
	detail, err := h.listing.GetPost(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	return detail.Post, nil
}

// renderForm shows the post form. Validation failures are re-rendered with
// status 200 so the browser keeps the entered values.
func (h *PostHandler) renderForm(c echo.Context, form PostForm, post *domain.Post) error {
	return c.Render(http.StatusOK, TemplatePostForm, PostFormPage{
		Layout: Layout{Viewer: viewer(c)},
		Form:   form,
		IsEdit: post != nil,
		Post:   post,
	})
}
