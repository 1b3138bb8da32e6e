// Package db opens the configured storage backend and exposes its
// repositories behind the core ports.
package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/yatube/yatube/internal/core/ports"
	"github.com/yatube/yatube/internal/infrastructure/config"
	"github.com/yatube/yatube/internal/infrastructure/db/mongo"
	"github.com/yatube/yatube/internal/infrastructure/db/sqlstore"
)

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Users  ports.UserRepository
	Groups ports.GroupRepository
	Posts  ports.PostRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping reports whether the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend's connections.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}

// Open connects to the backend named by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		return openMongo(ctx, cfg)
	case config.DriverPostgres:
		return openSQL(sqlstore.DriverPostgres, cfg.Postgres.DSN, log)
	case config.DriverSQLite:
		return openSQL(sqlstore.DriverSQLite, cfg.SQLite.Path, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openMongo(ctx context.Context, cfg *config.Config) (*Store, error) {
	client, database, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, err
	}

	if err := mongo.EnsureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &Store{
		Users:  mongo.NewUserRepository(database),
		Groups: mongo.NewGroupRepository(database),
		Posts:  mongo.NewPostRepository(database),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: client.Disconnect,
	}, nil
}

func openSQL(driver, dsn string, log zerolog.Logger) (*Store, error) {
	gdb, err := sqlstore.Open(driver, dsn, log)
	if err != nil {
		return nil, err
	}
	return NewSQLStore(gdb), nil
}

// NewSQLStore wraps an already opened gorm database.
func NewSQLStore(gdb *gorm.DB) *Store {
	return &Store{
		Users:  sqlstore.NewUserRepository(gdb),
		Groups: sqlstore.NewGroupRepository(gdb),
		Posts:  sqlstore.NewPostRepository(gdb),
		ping: func(ctx context.Context) error {
			return sqlstore.Ping(ctx, gdb)
		},
		close: func(context.Context) error {
			return sqlstore.Close(gdb)
		},
	}
}
