package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/terra-clan/archsim/internal/config"
	"github.com/terra-clan/archsim/internal/storage"
)

func migrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Storage.DSN == "" {
				return fmt.Errorf("%w: DATABASE_DSN is required", config.ErrConfiguration)
			}
			if dir == "" {
				dir = cfg.Storage.MigrationsDir
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			slog.Info("running database migrations", "dir", dir)
			if err := storage.MigrateFromDSN(ctx, cfg.Storage.DSN, dir); err != nil {
				return err
			}
			slog.Info("migrations complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Migrations directory (embedded set when empty)")

	return cmd
}
