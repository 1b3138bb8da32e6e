package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yatube/yatube/internal/api/middleware"
	"github.com/yatube/yatube/internal/core/domain"
)

// viewer returns the signed-in user, or nil for anonymous requests.
func viewer(c echo.Context) *domain.User {
	return middleware.CurrentUser(c)
}

// requireViewer performs a fast-fail check before any authoring call. The
// LoginRequired middleware normally redirects first; reaching here without a
// viewer means the route was wired without it.
func requireViewer(c echo.Context) (*domain.User, error) {
	u := viewer(c)
	if u == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return u, nil
}

// pageNumber reads ?page=. Missing or malformed values mean the first page.
func pageNumber(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// postID parses the :post_id route parameter. Anything that is not a
// positive integer cannot name a post and is reported as not found.
func postID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.ErrPostNotFound
	}
	return id, nil
}

// safeNext accepts only local absolute paths for post-login redirects.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func postURL(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10) + "/"
}
