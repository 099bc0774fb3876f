package data

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"companysearch/internal/biz"
	"companysearch/internal/conf"
	"companysearch/internal/data/postgres/sqlc"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewRedisCache,
	NewSearchCacheRepo,
	NewCompanyRepo,
	NewPrefilter,
	NewNormalizationMemo,
	NewGenerator,
	NewNormalizer,
	NewKeyBuilder,
	NewKeywordExtractor,
	NewSuggester,
	NewCompanyProviders,
)

// Data holds the database clients. Pool is nil in memory mode.
type Data struct {
	Pool    *pgxpool.Pool // pgxpool for sqlc (pgx/v5)
	Queries *sqlc.Queries // sqlc generated queries
	DB      *sql.DB       // database/sql view of Pool for migrations

	memory *memoryStore
}

// NewData opens the database described by c, or an in-memory store when no
// source is configured.
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(log.With(logger, "module", "data"))
	if c == nil || c.Database == nil || c.Database.Source == "" {
		helper.Warn("no database source configured, using in-memory store")
		return &Data{memory: newMemoryStore()}, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pgxConfig, err := newPgxPoolConfig(c.Database)
	if err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pgxConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	if c.Database.AutoMigrate {
		if err := RunMigrate(c.Database, db); err != nil {
			db.Close()
			pool.Close()
			return nil, nil, err
		}
		helper.Info("database migrations applied")
	}

	cleanup := func() {
		helper.Info("closing db connections")
		db.Close()
		pool.Close()
	}
	return &Data{
		Pool:    pool,
		Queries: sqlc.New(pool),
		DB:      db,
	}, cleanup, nil
}

// InMemory reports whether d has no database behind it.
func (d *Data) InMemory() bool {
	return d.memory != nil
}

// newPgxPoolConfig creates a pgxpool.Config from the database settings.
func newPgxPoolConfig(c *conf.Data_Database) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(c.Source)
	if err != nil {
		return nil, err
	}
	pool := c.Pool
	if pool == nil {
		return cfg, nil
	}
	if pool.MaxOpenConns > 0 {
		cfg.MaxConns = pool.MaxOpenConns
	}
	if pool.MinIdleConns > 0 {
		cfg.MinConns = pool.MinIdleConns
	}
	if pool.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = time.Duration(pool.MaxConnLifetime) * time.Minute
	}
	if pool.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = time.Duration(pool.MaxConnIdleTime) * time.Minute
	}
	return cfg, nil
}

// NewSearchCacheRepo returns the cache repository for d.
func NewSearchCacheRepo(d *Data, logger log.Logger) biz.SearchCacheRepo {
	if d.InMemory() {
		return &memorySearchCacheRepo{store: d.memory}
	}
	return &searchCacheRepo{
		data: d,
		log:  log.NewHelper(log.With(logger, "module", "data/search_cache")),
	}
}

// NewCompanyRepo returns the company repository for d.
func NewCompanyRepo(d *Data, logger log.Logger) biz.CompanyRepo {
	if d.InMemory() {
		return &memoryCompanyRepo{store: d.memory}
	}
	return &companyRepo{
		data: d,
		log:  log.NewHelper(log.With(logger, "module", "data/company")),
	}
}
