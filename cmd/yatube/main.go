// Command yatube serves the blog.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yatube/yatube/internal/api"
	"github.com/yatube/yatube/internal/core/ports"
	"github.com/yatube/yatube/internal/core/service"
	"github.com/yatube/yatube/internal/infrastructure/config"
	"github.com/yatube/yatube/internal/infrastructure/db"
	rediscache "github.com/yatube/yatube/internal/infrastructure/db/redis"
	"github.com/yatube/yatube/internal/infrastructure/media"
	"github.com/yatube/yatube/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title           Yatube API
// @version         1.0
// @description     Admin and token endpoints of the Yatube blog.
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "yatube",
	})

	store, err := db.Open(ctx, cfg, logger.Component("store"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}()
	log.Info().Str("driver", cfg.Storage.Driver).Msg("store ready")

	var (
		rdb   *goredis.Client
		cache ports.PageCache
	)
	if cfg.Redis.Addr != "" {
		pageCache, client, err := rediscache.OpenPageCache(ctx, rediscache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
			Timeout:  cfg.Redis.Timeout,
		}, cfg.PageCacheTTL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, serving without listing cache")
		} else {
			defer client.Close()
			rdb, cache = client, pageCache
		}
	}

	images := media.NewLocalStore(cfg.MediaRoot)

	e, err := api.NewRouter(api.Deps{
		Authoring:     service.NewPostService(store.Posts, store.Groups, images, cache, logger.Component("authoring")),
		Listing:       service.NewListingService(store.Posts, store.Groups, store.Users, cache, logger.Component("listing")),
		Groups:        service.NewGroupService(store.Groups, logger.Component("groups")),
		Auth:          service.NewAuthService(store.Users, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth")),
		Store:         store,
		Redis:         rdb,
		MediaRoot:     images.Root(),
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.TokenTTL,
		SecureCookies: cfg.IsProduction(),
		Logger:        logger.Component("http"),
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
