package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ead/authuser/internal/config"
	"github.com/ead/authuser/internal/database"
	"github.com/ead/authuser/internal/repository"
)

// ErrUnknownBackend is returned for a STORE_BACKEND nothing can open
var ErrUnknownBackend = errors.New("unknown store backend")

// Stores is the assembled user store and the connections behind it
type Stores struct {
	Users   repository.UserStore
	Backend string
	Cached  bool

	closers []func()
}

// Close releases every connection opened for the store, newest first
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func (s *Stores) onClose(fn func()) {
	s.closers = append(s.closers, fn)
}

// OpenUserStore connects the configured backend and wraps it with the Redis
// cache when enabled. On error every connection opened so far is closed.
func OpenUserStore(ctx context.Context, cfg *config.Config) (*Stores, error) {
	s := &Stores{Backend: cfg.Store.Backend}

	users, err := openBackend(ctx, cfg, s)
	if err != nil {
		s.Close()
		return nil, err
	}

	if cfg.Cache.Enabled {
		client, err := database.ConnectRedis(ctx, database.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
		s.onClose(func() { _ = client.Close() })

		users = repository.NewCachedUserStore(users, client, cfg.Cache.TTL)
		s.Cached = true
		slog.Info("user cache enabled",
			slog.String("addr", cfg.Cache.Addr),
			slog.Duration("ttl", cfg.Cache.TTL),
		)
	}

	s.Users = users
	return s, nil
}

func openBackend(ctx context.Context, cfg *config.Config, s *Stores) (repository.UserStore, error) {
	switch cfg.Store.Backend {
	case config.BackendSurreal:
		db, err := connectSurreal(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.onClose(func() { _ = db.Close() })

		slog.Info("connected to database",
			slog.String("backend", config.BackendSurreal),
			slog.String("host", cfg.Database.Host),
			slog.String("database", cfg.Database.Database),
		)
		return repository.NewSurrealUserRepository(db), nil

	case config.BackendPostgres:
		pool, err := database.ConnectPostgres(ctx, database.PostgresConfig{
			URL:      cfg.Postgres.URL,
			MaxConns: int32(cfg.Postgres.MaxConns),
		})
		if err != nil {
			return nil, err
		}
		s.onClose(pool.Close)

		slog.Info("connected to database", slog.String("backend", config.BackendPostgres))
		return repository.NewPostgresUserRepository(pool), nil

	case config.BackendMemory:
		slog.Warn("using in-memory user store, data will not survive a restart")
		return repository.NewMemoryUserRepository(), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Store.Backend)
}

func connectSurreal(ctx context.Context, cfg *config.Config) (*database.SurrealDB, error) {
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// MigrateResult describes what Migrate applied
type MigrateResult struct {
	Backend string
	// Version is the goose schema version after the run. Zero for SurrealDB.
	Version int64
}

// Migrate brings the configured backend's schema up to date, or rolls back
// the most recent PostgreSQL migration when down is set. SurrealDB schema
// statements are idempotent and cannot be rolled back.
func Migrate(ctx context.Context, cfg *config.Config, down bool) (*MigrateResult, error) {
	res := &MigrateResult{Backend: cfg.Store.Backend}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		run := database.MigratePostgres
		if down {
			run = database.RollbackPostgres
		}
		if err := run(ctx, cfg.Postgres.URL); err != nil {
			return nil, err
		}
		version, err := database.PostgresSchemaVersion(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		res.Version = version
		return res, nil

	case config.BackendSurreal:
		if down {
			return nil, errors.New("surreal schema has no rollback")
		}
		db, err := connectSurreal(ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer func() { _ = db.Close() }()

		if err := database.DefineSurrealSchema(ctx, db); err != nil {
			return nil, err
		}
		return res, nil

	case config.BackendMemory:
		return res, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Store.Backend)
}
