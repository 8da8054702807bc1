package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/terra-clan/archsim/internal/config"
)

// Open creates the project store selected by the storage driver.
// Postgres migrations are applied before the store is returned.
func Open(ctx context.Context, cfg *config.Config) (ProjectStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverNone:
		slog.Warn("no storage driver configured, projects will not be persisted")
		return NopStore{}, nil

	case config.DriverPostgres:
		store, err := NewPostgresStore(ctx, PostgresConfig{
			DSN:          cfg.Storage.DSN,
			MaxOpenConns: int32(cfg.Storage.MaxOpenConns),
			MinConns:     int32(cfg.Storage.MinConns),
		})
		if err != nil {
			return nil, err
		}

		fsys, err := Migrations(cfg.Storage.MigrationsDir)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to open migrations: %w", err)
		}
		slog.Info("running database migrations", "dir", cfg.Storage.MigrationsDir)
		if err := RunMigrations(ctx, store.Pool(), fsys); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return store, nil

	case config.DriverSQLite, config.DriverMySQL:
		return OpenGorm(cfg.Storage.Driver, cfg.Storage.DSN)

	case config.DriverRedis:
		return NewRedisStore(ctx, RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrConfiguration, cfg.Storage.Driver)
	}
}
