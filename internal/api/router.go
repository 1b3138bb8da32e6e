package api

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/yatube/yatube/internal/api/handler"
	"github.com/yatube/yatube/internal/api/metrics"
	"github.com/yatube/yatube/internal/api/middleware"
	"github.com/yatube/yatube/internal/api/view"
	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
	"github.com/yatube/yatube/internal/infrastructure/http/handlers"

	_ "github.com/yatube/yatube/docs"
)

const (
	loginPath = "/auth/login/"
	bodyLimit = "6M"
)

// Deps holds everything the router wires into handlers.
type Deps struct {
	Authoring ports.AuthoringService
	Listing   ports.ListingService
	Groups    ports.GroupService
	Auth      ports.AuthService

	// Store backs the readiness probe. Redis is optional.
	Store handlers.Pinger
	Redis *redis.Client

	// Renderer defaults to the embedded HTML templates.
	Renderer echo.Renderer
	// Registry defaults to a fresh registry with Go and process collectors.
	Registry *prometheus.Registry

	MediaRoot     string
	JWTSecret     string
	TokenTTL      time.Duration
	SecureCookies bool
	Logger        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	renderer := d.Renderer
	if renderer == nil {
		r, err := view.New()
		if err != nil {
			return nil, err
		}
		renderer = r
	}
	e.Renderer = renderer

	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	metrics.MustRegister(reg)

	// --- Global middleware ---
	e.Pre(echomiddleware.AddTrailingSlashWithConfig(echomiddleware.TrailingSlashConfig{
		Skipper:      skipTrailingSlash,
		RedirectCode: http.StatusMovedPermanently,
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:                 "yatube",
		Subsystem:                 "http",
		Registerer:                reg,
		DoNotUseRequestPathFor404: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(middleware.Session(d.JWTSecret))

	// --- Handlers ---
	listingHandler := handler.NewListingHandler(d.Listing, d.Logger)
	postHandler := handler.NewPostHandler(d.Authoring, d.Listing, d.Logger)
	authHandler := handler.NewAuthHandler(d.Auth, d.TokenTTL, d.SecureCookies, d.Logger)
	groupHandler := handler.NewGroupHandler(d.Groups, d.Listing, d.Logger)
	loginRequired := middleware.LoginRequired(loginPath)

	// --- Pages ---
	e.GET("/", listingHandler.Index)
	e.GET("/group/:slug/", listingHandler.GroupPosts)
	e.GET("/profile/:username/", listingHandler.Profile)
	e.GET("/posts/:post_id/", listingHandler.Detail)

	e.GET("/create/", postHandler.CreateForm, loginRequired)
	e.POST("/create/", postHandler.Create, loginRequired)
	e.GET("/posts/:post_id/edit/", postHandler.EditForm, loginRequired)
	e.POST("/posts/:post_id/edit/", postHandler.Edit, loginRequired)

	// --- Auth pages ---
	e.GET("/auth/signup/", authHandler.SignupForm)
	e.POST("/auth/signup/", authHandler.Signup)
	e.GET("/auth/login/", authHandler.LoginForm)
	e.POST("/auth/login/", authHandler.Login)
	e.GET("/auth/logout/", authHandler.Logout)
	e.POST("/auth/logout/", authHandler.Logout)

	if d.MediaRoot != "" {
		e.StaticFS("/media/", os.DirFS(d.MediaRoot))
	}

	// --- JSON API ---
	v1 := e.Group("/api/v1")
	v1.POST("/auth/login", authHandler.APILogin)
	v1.GET("/groups", groupHandler.List)
	v1.POST("/groups", groupHandler.Create, middleware.Auth(d.JWTSecret), middleware.RBAC(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Store, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

var machinePrefixes = []string{"/api/", "/health", "/metrics", "/swagger", "/media"}

// skipTrailingSlash leaves non-page paths and non-GET requests alone.
func skipTrailingSlash(c echo.Context) bool {
	req := c.Request()
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return true
	}
	p := req.URL.Path
	for _, prefix := range machinePrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
