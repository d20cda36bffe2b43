package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/trip-planner/backend/migrations"
)

// RedisKeyPrefix namespaces every key the redis backend writes.
const RedisKeyPrefix = "tripplanner:"

// StoreOptions selects and configures a KV backend.
type StoreOptions struct {
	Driver      string // memory, file, postgres or redis
	Path        string // file
	DatabaseURL string // postgres
	RedisURL    string // redis
	Logger      *slog.Logger
}

// OpenKV connects the backend named by opts.Driver. For postgres it applies
// pending migrations before returning. The returned close func releases
// connections and is never nil.
func OpenKV(ctx context.Context, opts StoreOptions) (KV, func(), error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	noop := func() {}

	switch opts.Driver {
	case "memory":
		return NewMemoryKV(), noop, nil

	case "file":
		return NewFileKV(opts.Path), noop, nil

	case "postgres":
		// pgxpool.New does not open connections immediately; Ping does.
		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("repo.OpenKV: create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("repo.OpenKV: connect: %w", err)
		}

		// goose needs database/sql; give it its own short-lived connection.
		sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
		results, err := migrations.Up(ctx, sqlDB)
		sqlDB.Close()
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("repo.OpenKV: %w", err)
		}
		log.InfoContext(ctx, "database ready", "migrations_applied", len(results))
		return NewPostgresKV(pool), pool.Close, nil

	case "redis":
		ropts, err := redis.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("repo.OpenKV: parse redis url: %w", err)
		}
		client := redis.NewClient(ropts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("repo.OpenKV: connect redis: %w", err)
		}
		log.InfoContext(ctx, "redis ready", "addr", ropts.Addr)
		return NewRedisKV(client, RedisKeyPrefix), func() { client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("repo.OpenKV: unknown store driver %q", opts.Driver)
	}
}
