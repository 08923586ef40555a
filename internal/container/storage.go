package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-mapper/internal/shortener"
	"github.com/serroba/url-mapper/internal/store"
	"go.uber.org/zap"
)

const startupTimeout = 30 * time.Second

// Redis owns the client shared by the cache and the event streams.
type Redis struct {
	*redis.Client
}

func (r *Redis) Shutdown() error {
	return r.Close()
}

// Postgres owns the connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Pool.Close()

	return nil
}

// Backend is the configured mapping store before any caching.
type Backend interface {
	shortener.Repository
	store.Pinger
}

// RedisPackage provides the shared Redis client.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)

		return &Redis{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// PostgresPackage provides the PostgreSQL pool, waiting until the server answers.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}

		if err := store.WaitReady(ctx, StorePostgres, pool, logger); err != nil {
			pool.Close()

			return nil, fmt.Errorf("postgres not reachable: %w", err)
		}

		return &Postgres{Pool: pool}, nil
	})
}

// BackendPackage provides the store selected by Options.Store. The schema is
// not touched here; see Migrate.
func BackendPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (Backend, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Store {
		case StoreMemory:
			return store.NewMemoryStore(), nil
		case StoreSQLite:
			s, err := store.NewSQLiteStore(opts.SQLitePath)
			if err != nil {
				return nil, err
			}

			return s, nil
		case StorePostgres:
			pg, err := do.Invoke[*Postgres](i)
			if err != nil {
				return nil, err
			}

			return store.NewPostgresStore(pg.Pool), nil
		default:
			return nil, fmt.Errorf("unknown store %q", opts.Store)
		}
	})
}

// Migrate creates the schema of the configured store if it has one.
func Migrate(ctx context.Context, i *do.Injector) error {
	backend, err := do.Invoke[Backend](i)
	if err != nil {
		return err
	}

	m, ok := backend.(store.Migrator)
	if !ok {
		return nil
	}

	return m.Migrate(ctx)
}

// RepositoryPackage provides the repository the resolver works against: the
// migrated backend, behind a Redis read cache when a cache TTL is set.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		if err := Migrate(ctx, i); err != nil {
			return nil, fmt.Errorf("migrate %s store: %w", opts.Store, err)
		}

		backend := do.MustInvoke[Backend](i)

		if opts.CacheTTL <= 0 {
			return backend, nil
		}

		client := do.MustInvoke[*Redis](i)
		logger.Info("mapping cache enabled", zap.Duration("ttl", opts.cacheTTL()))

		return store.NewRedisCacheRepository(backend, client.Client, opts.cacheTTL()), nil
	})
}

// ResolverPackage provides the mapping resolver with the configured generator.
func ResolverPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Resolver, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		repo := do.MustInvoke[shortener.Repository](i)

		var generator shortener.TokenGenerator

		switch opts.Generator {
		case GeneratorRandom:
			g, err := shortener.NewRandomGenerator(opts.TokenLength)
			if err != nil {
				return nil, err
			}

			generator = g
		default:
			generator = shortener.NewHashGenerator(opts.TokenLength)
		}

		return shortener.NewResolver(repo, generator, opts.MaxAttempts, logger), nil
	})
}
