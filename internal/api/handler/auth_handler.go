package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yatube/yatube/internal/api/metrics"
	"github.com/yatube/yatube/internal/api/middleware"
	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
)

// AuthHandler serves the signup, login and logout pages plus the JSON login
// used by API clients.
type AuthHandler struct {
	authService  ports.AuthService
	tokenTTL     time.Duration
	secureCookie bool
	log          zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, tokenTTL time.Duration, secureCookie bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
		log:          log,
	}
}

// SignupForm godoc
// @Summary      Signup page
// @Tags         auth
// @Produce      html
// @Success      200
// @Router       /auth/signup/ [get]
func (h *AuthHandler) SignupForm(c echo.Context) error {
	return c.Render(http.StatusOK, TemplateSignup, SignupPage{
		Layout: Layout{Viewer: viewer(c)},
		Form:   SignupForm{Errors: Errors{}},
	})
}

// Signup godoc
// @Summary      Create an account
// @Description  Registers the user, signs them in and redirects to the index.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        username   formData  string  true   "Username"
// @Param        email      formData  string  false  "Email"
// @Param        password1  formData  string  true   "Password"
// @Param        password2  formData  string  true   "Password confirmation"
// @Success      302  "redirect to /"
// @Router       /auth/signup/ [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form body")
	}

	form := SignupForm{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Errors:    Errors{},
	}
	render := func(errs Errors) error {
		form.Errors = errs
		return c.Render(http.StatusOK, TemplateSignup, SignupPage{Layout: Layout{Viewer: viewer(c)}, Form: form})
	}

	if err := c.Validate(&req); err != nil {
		if errs, ok := formErrors(err); ok {
			return render(errs)
		}
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.authService.Register(ctx, toRegisterInput(req)); err != nil {
		if errs, ok := formErrors(err); ok {
			return render(errs)
		}
		return err
	}

	token, _, err := h.authService.Login(ctx, req.Username, req.Password1)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(c, token, int(h.tokenTTL.Seconds()), h.secureCookie)

	return c.Redirect(http.StatusFound, "/")
}

// LoginForm godoc
// @Summary      Login page
// @Tags         auth
// @Produce      html
// @Param        next  query  string  false  "Local path to return to"
// @Success      200
// @Router       /auth/login/ [get]
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, TemplateLogin, LoginPage{
		Layout: Layout{Viewer: viewer(c)},
		Form:   LoginForm{Errors: Errors{}},
		Next:   c.QueryParam("next"),
	})
}

// Login godoc
// @Summary      Sign in
// @Description  Sets the session cookie and redirects to ?next= (local paths only) or /.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        username  formData  string  true   "Username"
// @Param        password  formData  string  true   "Password"
// @Param        next      formData  string  false  "Local path to return to"
// @Success      302
// @Router       /auth/login/ [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginFormRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form body")
	}
	if req.Next == "" {
		req.Next = c.QueryParam("next")
	}

	render := func(errs Errors) error {
		return c.Render(http.StatusOK, TemplateLogin, LoginPage{
			Layout: Layout{Viewer: viewer(c)},
			Form:   LoginForm{Username: req.Username, Errors: errs},
			Next:   req.Next,
		})
	}

	if err := c.Validate(&req); err != nil {
		if errs, ok := formErrors(err); ok {
			return render(errs)
		}
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failed").Inc()
			errs, _ := formErrors(err)
			return render(errs)
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	h.log.Debug().Str("username", user.Username).Msg("user signed in")

	middleware.SetSessionCookie(c, token, int(h.tokenTTL.Seconds()), h.secureCookie)
	return c.Redirect(http.StatusFound, safeNext(req.Next))
}

// Logout godoc
// @Summary      Sign out
// @Tags         auth
// @Success      302  "redirect to /"
// @Router       /auth/logout/ [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	return c.Redirect(http.StatusFound, "/")
}

// APILogin godoc
// @Summary      Obtain a JWT
// @Description  Authenticates by username and password and returns a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) APILogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failed").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}
