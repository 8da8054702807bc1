package health

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresChecker probes PostgreSQL over database/sql, independent of the store's pool
type PostgresChecker struct {
	db *sql.DB
}

// NewPostgresChecker opens a small lib/pq handle for the readiness probe
func NewPostgresChecker(dsn string) (*PostgresChecker, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &PostgresChecker{db: db}, nil
}

// HealthCheck runs a trivial query
func (c *PostgresChecker) HealthCheck(ctx context.Context) error {
	var one int
	if err := c.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	return nil
}

// Close releases the handle
func (c *PostgresChecker) Close() error {
	return c.db.Close()
}
