// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"doctor-ranking/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient holds the rating store's connection pool.
type PostgresClient struct {
	DB          *sql.DB
	target      string
	pingTimeout time.Duration
}

// NewPostgres opens the rating store pool. Idle connections never exceed MaxConnections
// and are recycled after ConnMaxLifetime.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	idle := cfg.MaxIdle
	if cfg.MaxConnections > 0 && idle > cfg.MaxConnections {
		idle = cfg.MaxConnections
	}
	lifetime := config.GetDuration(cfg.ConnMaxLifetime)

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(idle)
	db.SetConnMaxLifetime(lifetime)
	db.SetConnMaxIdleTime(lifetime)

	return newPostgresClient(db, fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database), config.GetDuration(cfg.PingTimeout)), nil
}

func newPostgresClient(db *sql.DB, target string, pingTimeout time.Duration) *PostgresClient {
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	return &PostgresClient{DB: db, target: target, pingTimeout: pingTimeout}
}

// Ping checks the rating store within the configured ping timeout. It backs startup
// retries and the /ready probe.
func (c *PostgresClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres %s unreachable: %w", c.target, err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
