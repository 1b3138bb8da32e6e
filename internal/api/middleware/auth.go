package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/yatube/yatube/internal/core/domain"
)

const (
	// SessionCookie carries the signed token for browser sessions.
	SessionCookie = "yatube_session"

	userKey = "user"
)

var errInvalidToken = errors.New("invalid token")

// Auth validates a bearer JWT and injects its claims into context. Requests
// without a valid token are rejected with 401.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			raw, ok := bearerToken(authHeader)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, err := ParseToken(jwtSecret, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			setUser(c, user)
			return next(c)
		}
	}
}

// Session resolves the viewer from the session cookie or a bearer header
// when present. Anonymous requests pass through untouched; a stale or
// forged cookie is dropped.
func Session(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ""
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				raw = cookie.Value
			} else if token, ok := bearerToken(c.Request().Header.Get("Authorization")); ok {
				raw = token
			}

			if raw != "" {
				user, err := ParseToken(jwtSecret, raw)
				if err != nil {
					ClearSessionCookie(c)
				} else {
					setUser(c, user)
				}
			}
			return next(c)
		}
	}
}

// LoginRequired redirects anonymous viewers to loginPath, remembering the
// page they asked for in ?next=.
func LoginRequired(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				target := loginPath + "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
				return c.Redirect(http.StatusFound, target)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated viewer, or nil for anonymous requests.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}

// ParseToken verifies an HS256 token and rebuilds the user it was issued to.
func ParseToken(jwtSecret, raw string) (*domain.User, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, errInvalidToken
	}

	uid, _ := claims["uid"].(float64)
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	if uid <= 0 || username == "" {
		return nil, errInvalidToken
	}

	return &domain.User{ID: int64(uid), Username: username, Role: role}, nil
}

// SetSessionCookie stores token in an HttpOnly cookie scoped to the site.
func SetSessionCookie(c echo.Context, token string, maxAge int, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func setUser(c echo.Context, user *domain.User) {
	c.Set(userKey, user)
	c.Set("username", user.Username)
	c.Set("role", user.Role)
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
