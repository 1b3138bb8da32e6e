package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yatube/yatube/internal/api/middleware"
	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
)

func newAuthHandler(svc *stubAuthService) *AuthHandler {
	return NewAuthHandler(svc, time.Hour, false, zerolog.Nop())
}

func okLogin(_ context.Context, username, _ string) (string, *domain.User, error) {
	return "signed.jwt.token", &domain.User{ID: 1, Username: username, Role: domain.RoleUser}, nil
}

func sessionCookie(t *testing.T, header http.Header) *http.Cookie {
	t.Helper()
	for _, raw := range header.Values("Set-Cookie") {
		if strings.HasPrefix(raw, middleware.SessionCookie+"=") {
			req := http.Request{Header: http.Header{"Cookie": {strings.SplitN(raw, ";", 2)[0]}}}
			c, _ := req.Cookie(middleware.SessionCookie)
			return c
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Signup
// ---------------------------------------------------------------------------

func TestSignup_Success(t *testing.T) {
	var got ports.RegisterInput
	svc := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			got = in
			return &domain.User{ID: 1, Username: in.Username}, nil
		},
		loginFn: okLogin,
	}
	h := newAuthHandler(svc)
	e, _ := newEcho()

	c, rec := formCtx(e, "/auth/signup/", url.Values{
		"username":   {"leo"},
		"email":      {"leo@example.com"},
		"first_name": {"Leo"},
		"password1":  {"Secret123!"},
		"password2":  {"Secret123!"},
	})
	if err := h.Signup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to index, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if got.Username != "leo" || got.Password != "Secret123!" || got.FirstName != "Leo" {
		t.Fatalf("unexpected register input %+v", got)
	}
	if ck := sessionCookie(t, rec.Header()); ck == nil || ck.Value != "signed.jwt.token" {
		t.Fatalf("expected session cookie, got %v", ck)
	}
}

func TestSignup_PasswordMismatch(t *testing.T) {
	svc := &stubAuthService{registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
		t.Fatalf("register must not be called")
		return nil, nil
	}}
	h := newAuthHandler(svc)
	e, r := newEcho()

	c, rec := formCtx(e, "/auth/signup/", url.Values{
		"username":  {"leo"},
		"password1": {"Secret123!"},
		"password2": {"Different1!"},
	})
	if err := h.Signup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	page := r.data.(SignupPage)
	if rec.Code != http.StatusOK || page.Form.Errors.Get("password2") == "" || page.Form.Username != "leo" {
		t.Fatalf("unexpected re-render %d %+v", rec.Code, page.Form)
	}
}

func TestSignup_TakenUsername(t *testing.T) {
	svc := &stubAuthService{registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
		return nil, domain.ErrUserExists
	}}
	h := newAuthHandler(svc)
	e, r := newEcho()

	c, _ := formCtx(e, "/auth/signup/", url.Values{
		"username":  {"leo"},
		"password1": {"Secret123!"},
		"password2": {"Secret123!"},
	})
	if err := h.Signup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.data.(SignupPage).Form.Errors.Get("username") == "" {
		t.Fatalf("expected username error")
	}
}

// ---------------------------------------------------------------------------
// Login / Logout
// ---------------------------------------------------------------------------

func TestLogin_RedirectsToNext(t *testing.T) {
	h := newAuthHandler(&stubAuthService{loginFn: okLogin})
	e, _ := newEcho()

	c, rec := formCtx(e, "/auth/login/", url.Values{
		"username": {"auth"},
		"password": {"Secret123!"},
		"next":     {"/create/"},
	})
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/create/" {
		t.Fatalf("expected redirect to next, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if sessionCookie(t, rec.Header()) == nil {
		t.Fatalf("expected session cookie")
	}
}

func TestLogin_IgnoresForeignNext(t *testing.T) {
	h := newAuthHandler(&stubAuthService{loginFn: okLogin})
	e, _ := newEcho()

	for _, next := range []string{"https://evil.example/", "//evil.example/", "create/"} {
		c, rec := formCtx(e, "/auth/login/", url.Values{
			"username": {"auth"},
			"password": {"Secret123!"},
			"next":     {next},
		})
		if err := h.Login(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Header().Get("Location") != "/" {
			t.Fatalf("next %q: expected redirect to /, got %q", next, rec.Header().Get("Location"))
		}
	}
}

func TestLogin_BadCredentialsRerender(t *testing.T) {
	svc := &stubAuthService{loginFn: func(context.Context, string, string) (string, *domain.User, error) {
		return "", nil, domain.ErrInvalidCredentials
	}}
	h := newAuthHandler(svc)
	e, r := newEcho()

	c, rec := formCtx(e, "/auth/login/?next=/create/", url.Values{"username": {"auth"}, "password": {"wrong"}})
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	page := r.data.(LoginPage)
	if rec.Code != http.StatusOK || page.Form.Errors.Get(nonFieldError) == "" {
		t.Fatalf("expected non-field error, got %d %+v", rec.Code, page.Form)
	}
	if page.Next != "/create/" || page.Form.Username != "auth" {
		t.Fatalf("form state lost: %+v", page)
	}
	if sessionCookie(t, rec.Header()) != nil {
		t.Fatalf("no cookie expected on failed login")
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	h := newAuthHandler(&stubAuthService{})
	e, _ := newEcho()

	c, rec := getCtx(e, "/auth/logout/")
	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Fatalf("expected expired cookie, got %q", rec.Header().Get("Set-Cookie"))
	}
}

// ---------------------------------------------------------------------------
// JSON login
// ---------------------------------------------------------------------------

func TestAPILogin_Success(t *testing.T) {
	h := newAuthHandler(&stubAuthService{loginFn: okLogin})
	e, _ := newEcho()

	c, rec := jsonCtx(e, "/api/v1/auth/login", `{"username":"auth","password":"Secret123!"}`)
	if err := h.APILogin(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"token":"signed.jwt.token"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAPILogin_MissingFields(t *testing.T) {
	h := newAuthHandler(&stubAuthService{})
	e, _ := newEcho()

	c, rec := jsonCtx(e, "/api/v1/auth/login", `{"username":"auth"}`)
	if err := h.APILogin(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAPILogin_InvalidCredentials(t *testing.T) {
	svc := &stubAuthService{loginFn: func(context.Context, string, string) (string, *domain.User, error) {
		return "", nil, domain.ErrInvalidCredentials
	}}
	h := newAuthHandler(svc)
	e, _ := newEcho()

	c, _ := jsonCtx(e, "/api/v1/auth/login", `{"username":"auth","password":"nope"}`)
	if err := h.APILogin(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
