package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/terra-clan/archsim/internal/api"
	"github.com/terra-clan/archsim/internal/catalog"
	"github.com/terra-clan/archsim/internal/config"
	"github.com/terra-clan/archsim/internal/conversation"
	"github.com/terra-clan/archsim/internal/evaluation"
	"github.com/terra-clan/archsim/internal/health"
	"github.com/terra-clan/archsim/internal/llm"
	"github.com/terra-clan/archsim/internal/metrics"
	"github.com/terra-clan/archsim/internal/persona"
	"github.com/terra-clan/archsim/internal/storage"
)

func serveCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *logLevel)
		},
	}
}

func runServe(ctx context.Context, logLevel string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if logLevel == "" {
		setupLogging(cfg.Log.Level)
	}

	slog.Info("starting archsim",
		"version", Version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"model_provider", cfg.Model.Provider,
		"model", cfg.Model.Name,
		"storage_driver", cfg.Storage.Driver,
	)

	// Static data
	scenarios, err := catalog.Load(cfg.Catalog.ScenariosPath)
	if err != nil {
		return fmt.Errorf("failed to load scenario catalog: %w", err)
	}
	components, err := catalog.LoadComponents(cfg.Catalog.ComponentsPath)
	if err != nil {
		return fmt.Errorf("failed to load architecture definitions: %w", err)
	}
	slog.Info("catalog loaded",
		"scenarios", len(scenarios.ListScenarios()),
		"component_types", len(components.Types()),
	)

	m := metrics.New()

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	defer initCancel()

	gateway, err := llm.New(initCtx, cfg.Model, m)
	if err != nil {
		return fmt.Errorf("failed to create model gateway: %w", err)
	}

	store, err := storage.Open(initCtx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open project store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("store close error", "error", err)
		}
	}()

	// Readiness probes
	registry := health.NewRegistry()
	registry.Register("store", health.CheckerFunc(store.Ping))
	if cfg.Storage.Driver == config.DriverPostgres {
		pgChecker, err := health.NewPostgresChecker(cfg.Storage.DSN)
		if err != nil {
			return err
		}
		defer pgChecker.Close()
		registry.Register("postgres", pgChecker)
	}

	slog.Info("readiness checks registered", "checks", registry.List())

	evaluator, err := evaluation.NewEvaluator(scenarios, components, gateway, m)
	if err != nil {
		return fmt.Errorf("failed to create evaluator: %w", err)
	}

	server := api.NewServer(cfg.Server, api.Dependencies{
		Catalog:      scenarios,
		Components:   components,
		Orchestrator: conversation.NewOrchestrator(persona.NewBuilder(scenarios), gateway),
		Evaluator:    evaluator,
		Store:        store,
		Health:       registry,
		Metrics:      m,
	})

	// Setup HTTP server. WriteTimeout stays open-ended by default so slow
	// model replies are not cut off.
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	case <-quit:
	}

	slog.Info("shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("archsim stopped")
	return nil
}
