package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const minProductionSecret = 32

type Config struct {
	Port         string        `env:"PORT,           default=8080"`
	Env          string        `env:"ENV,            default=development"`
	JWTSecret    string        `env:"JWT_SECRET,     default=dev-secret-change-me"`
	LogLevel     string        `env:"LOG_LEVEL,      default=info"`
	TokenTTL     time.Duration `env:"TOKEN_TTL,      default=24h"`
	MediaRoot    string        `env:"MEDIA_ROOT,     default=./media"`
	PageCacheTTL time.Duration `env:"PAGE_CACHE_TTL, default=20s"`

	Storage  StorageConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER, default=sqlite"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=yatube"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=yatube.db"`
}

// RedisConfig is optional: an empty address runs without the listing cache.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,        default=0"`
	PoolSize int           `env:"REDIS_POOL_SIZE, default=10"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,   default=3s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from a fixed set of variables.
func LoadFrom(ctx context.Context, vars map[string]string) (*Config, error) {
	return load(ctx, envconfig.MapLookuper(vars))
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return errors.New("config: MONGO_URI and MONGO_DB are required for the mongo driver")
		}
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("config: POSTGRES_DSN is required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return errors.New("config: SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < minProductionSecret {
		return fmt.Errorf("config: JWT_SECRET must be at least %d characters in production", minProductionSecret)
	}
	if c.PageCacheTTL < 0 {
		return errors.New("config: PAGE_CACHE_TTL must not be negative")
	}
	if c.Redis.PoolSize < 0 || c.Redis.Timeout < 0 {
		return errors.New("config: REDIS_POOL_SIZE and REDIS_TIMEOUT must not be negative")
	}
	return nil
}
