// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lead-distribution-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient holds the shared connection pool. The data-plane workers
// take the raw *sql.DB; this type only exists for lifecycle management in
// the worker manager.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens the pool. sql.Open does not dial, so callers are
// expected to Ping before registering workers on top of it.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// One pool serves all eight workers; idle connections are recycled so a
	// quiet tenant does not pin server slots for hours.
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

// GetDB exposes the underlying pool for the workers' own query code.
func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
