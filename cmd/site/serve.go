package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"kurssite/internal/config"
	"kurssite/internal/database"
	"kurssite/internal/database/migration"
	"kurssite/internal/http/handler"
	"kurssite/internal/http/server"
	"kurssite/internal/otel"
	"kurssite/internal/repository/postgres"
	"kurssite/internal/service"
	"kurssite/internal/storage"
)

// serve wires storage, database and HTTP, then blocks until ctx is done and
// the server has drained.
func serve(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) error {
	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing_shutdown_failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		return err
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	blog := service.NewBlogService(objStore, postgres.NewPostPostgres(db))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, database.ApplicationName),
	)

	app, err := server.New(server.Options{
		Logger:     logger,
		Registerer: reg,
		Deps: handler.Dependencies{
			DB:         db,
			Blog:       blog,
			AdminToken: cfg.AdminToken,
			Location:   cfg.Location(),
			Gatherer:   reg,
		},
	})
	if err != nil {
		return err
	}

	if cfg.AdminToken == "" {
		logger.Info("editor_api_disabled", zap.String("reason", "ADMIN_TOKEN not set"))
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listening", zap.String("addr", addr), zap.String("app_host", cfg.AppHost))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server_shutting_down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
