package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions sizes the connection pool. Zero values keep the pgx defaults
// or whatever the connection string sets.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// DB owns the pgx pool shared by the team, user and submission repositories.
type DB struct {
	pool *pgxpool.Pool
}

// New parses databaseURL, applies opts and opens a pool. The database must
// answer a ping before New returns.
func New(ctx context.Context, databaseURL string, opts PoolOptions) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	applyPoolOptions(poolCfg, opts)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func applyPoolOptions(cfg *pgxpool.Config, opts PoolOptions) {
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = min(opts.MinConns, cfg.MaxConns)
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
}

// Migrate brings the schema up to date. See the package-level Migrate.
func (db *DB) Migrate(ctx context.Context) error {
	return Migrate(ctx, db.pool)
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Ping verifies the database connection is alive. It backs the health check.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Pool returns the underlying pool for repository use.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}
