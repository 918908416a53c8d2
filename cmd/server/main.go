package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinai/neurodiag/internal/api"
	"github.com/clinai/neurodiag/internal/config"
	"github.com/clinai/neurodiag/internal/kb"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// An unloadable knowledge base is a startup failure, not a degraded mode.
	rules, err := kb.Load(config.KBPath())
	if err != nil {
		logger.Fatal("failed to load knowledge base", zap.String("path", config.KBPath()), zap.Error(err))
	}
	logger.Info("knowledge base loaded",
		zap.String("path", config.KBPath()),
		zap.Int("rules", len(rules.Rules)),
		zap.Int("risk_adjustments", len(rules.Adjustments)))

	ctx := context.Background()

	// Transcript storage is optional: without DATABASE_URL the service runs
	// with in-engine session state only.
	var pool *pgxpool.Pool
	if dbURL := config.DatabaseURL(); dbURL != "" {
		pool, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("failed to ping database", zap.Error(err))
		}
		logger.Info("connected to database")
	} else {
		logger.Info("DATABASE_URL not set, transcript persistence disabled")
	}

	app := api.NewApp(rules, pool, logger)

	// Start background services
	if app.Pruner != nil {
		app.Pruner.Start()
	}

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	// Stop background services
	if app.Pruner != nil {
		app.Pruner.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
