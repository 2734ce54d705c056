package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	coreconfig "github.com/RagaBusiness/manoya-tg-bot/core/config"
	coredatabase "github.com/RagaBusiness/manoya-tg-bot/core/database"
	"github.com/RagaBusiness/manoya-tg-bot/core/logger"
	"github.com/RagaBusiness/manoya-tg-bot/core/telegram/state"
)

const defaultDatabaseWait = 15 * time.Second

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	// DatabaseWait bounds how long to wait for Postgres to accept connections; 0 -> 15s.
	DatabaseWait time.Duration

	LoggerInit  func(*coreconfig.Config) error
	Connect     func(context.Context, coredatabase.Config) (*sqlx.DB, error)
	Migrate     func(context.Context, coredatabase.Config) error
	RedisClient func(ctx context.Context, url string) (*redis.Client, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB    *sqlx.DB
	Redis *redis.Client
	Store state.Store

	closers []io.Closer
}

// Close releases connections opened during bootstrap.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Run initializes the logger and the session store selected by storage.backend.
// The postgres backend also waits for the database and applies migrations.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	storage := opts.Config.Storage
	res := &Result{}
	switch storage.Backend {
	case coreconfig.StoragePostgres:
		db, err := openPostgres(ctx, opts)
		if err != nil {
			return nil, err
		}
		res.DB = db
		res.closers = append(res.closers, db)
		res.Store = state.NewPostgresStore(db, storage.SessionTTL)
	case coreconfig.StorageRedis:
		newClient := opts.RedisClient
		if newClient == nil {
			newClient = state.NewRedisClient
		}
		rdb, err := newClient(ctx, storage.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: redis initialization failed: %w", err)
		}
		res.Redis = rdb
		res.closers = append(res.closers, rdb)
		res.Store = state.NewRedisStore(rdb, storage.KeyPrefix, storage.SessionTTL)
	default:
		res.Store = state.NewMemoryStore(storage.SessionTTL)
	}

	logger.SESS.LogAttrs(ctx, slog.LevelInfo, "session.store",
		slog.String("status", "ok"),
		slog.String("backend", storage.Backend),
		slog.Duration("ttl", storage.SessionTTL),
	)
	return res, nil
}

func openPostgres(ctx context.Context, opts Options) (*sqlx.DB, error) {
	connect := opts.Connect
	if connect == nil {
		wait := opts.DatabaseWait
		if wait <= 0 {
			wait = defaultDatabaseWait
		}
		if err := coredatabase.WaitForPostgres(ctx, opts.Database.DSN(), wait); err != nil {
			return nil, fmt.Errorf("bootstrap: database unavailable: %w", err)
		}
		connect = coredatabase.Connect
	}
	db, err := connect(ctx, opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(ctx, opts.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}
	return db, nil
}
