package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps pgxpool.Pool and provides a shared connection pool against the
// PostGIS-enabled spatial store.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB connection pool and verifies that PostGIS is
// installed.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = 25
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	var postgisVersion string
	if err := pool.QueryRow(ctx, `SELECT PostGIS_Lib_Version()`).Scan(&postgisVersion); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgis missing: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Stat exposes pool statistics for the metrics exporter.
func (db *DB) Stat() *pgxpool.Stat {
	return db.Pool.Stat()
}

// Close releases pool resources.
func (db *DB) Close() {
	db.Pool.Close()
}
