package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yatube/yatube/internal/api/metrics"
	"github.com/yatube/yatube/internal/core/ports"
)

// ListingHandler serves the read-only post pages.
type ListingHandler struct {
	listing ports.ListingService
	log     zerolog.Logger
}

func NewListingHandler(listing ports.ListingService, log zerolog.Logger) *ListingHandler {
	return &ListingHandler{listing: listing, log: log}
}

// Index godoc
// @Summary      Latest posts
// @Description  Renders page ?page=N of all posts, newest first, ten per page.
// @Tags         posts
// @Produce      html
// @Param        page  query  int  false  "Page number"
// @Success      200
// @Router       / [get]
func (h *ListingHandler) Index(c echo.Context) error {
	res, err := h.listing.ListPosts(c.Request().Context(), ports.ListPostsInput{Page: pageNumber(c)})
	if err != nil {
		return err
	}
	observeListing("index", res)

	return c.Render(http.StatusOK, TemplateIndex, IndexPage{
		Layout:  Layout{Viewer: viewer(c)},
		PageObj: res.Page,
	})
}

// GroupPosts godoc
// @Summary      Group posts
// @Description  Renders the posts of one group. Unknown slugs give 404.
// @Tags         posts
// @Produce      html
// @Param        slug  path   string  true   "Group slug"
// @Param        page  query  int     false  "Page number"
// @Success      200
// @Failure      404
// @Router       /group/{slug}/ [get]
func (h *ListingHandler) GroupPosts(c echo.Context) error {
	res, err := h.listing.ListPosts(c.Request().Context(), ports.ListPostsInput{
		GroupSlug: c.Param("slug"),
		Page:      pageNumber(c),
	})
	if err != nil {
		return err
	}
	observeListing("group", res)

	return c.Render(http.StatusOK, TemplateGroupList, GroupPage{
		Layout:  Layout{Viewer: viewer(c)},
		Group:   res.Group,
		PageObj: res.Page,
	})
}

// Profile godoc
// @Summary      Author profile
// @Description  Renders the posts of one author. Unknown usernames give 404.
// @Tags         posts
// @Produce      html
// @Param        username  path   string  true   "Username"
// @Param        page      query  int     false  "Page number"
// @Success      200
// @Failure      404
// @Router       /profile/{username}/ [get]
func (h *ListingHandler) Profile(c echo.Context) error {
	res, err := h.listing.ListPosts(c.Request().Context(), ports.ListPostsInput{
		AuthorUsername: c.Param("username"),
		Page:           pageNumber(c),
	})
	if err != nil {
		return err
	}
	observeListing("profile", res)

	return c.Render(http.StatusOK, TemplateProfile, ProfilePage{
		Layout:  Layout{Viewer: viewer(c)},
		Author:  res.Author,
		PageObj: res.Page,
	})
}

// Detail godoc
// @Summary      Post detail
// @Description  Renders a single post and the number of posts by its author.
// @Tags         posts
// @Produce      html
// @Param        post_id  path  int  true  "Post ID"
// @Success      200
// @Failure      404
// @Router       /posts/{post_id}/ [get]
func (h *ListingHandler) Detail(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	detail, err := h.listing.GetPost(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, TemplatePostDetail, PostDetailPage{
		Layout:           Layout{Viewer: viewer(c)},
		Post:             detail.Post,
		AuthorPostsCount: detail.AuthorPostsCount,
	})
}

func observeListing(listing string, res *ports.ListPostsResult) {
	metrics.ListingCacheTotal.WithLabelValues(listing, metrics.CacheResult(res.Cached)).Inc()
}
