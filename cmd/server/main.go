package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/arturomorarioja/csv-parser-api/internal/audit"
	"github.com/arturomorarioja/csv-parser-api/internal/config"
	"github.com/arturomorarioja/csv-parser-api/internal/core"
	"github.com/arturomorarioja/csv-parser-api/internal/logging"
	"github.com/arturomorarioja/csv-parser-api/internal/reporting"
	"github.com/arturomorarioja/csv-parser-api/internal/web"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load .env if present; variables already in the environment win.
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	if err := reporting.Init(cfg.Reporting.DSN, cfg.Reporting.Environment, version); err != nil {
		slog.Warn("error reporting disabled", "error", err)
	} else if reporting.Enabled() {
		slog.Info("error reporting enabled", "environment", cfg.Reporting.Environment)
	}

	service, err := core.NewService(cfg)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	var recorder *audit.Recorder
	if cfg.Audit.Enabled() {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := audit.NewPostgresStore(connectCtx, cfg.Audit.DatabaseURL, cfg.Audit.MaxConns)
		cancel()
		if err != nil {
			slog.Error("failed to connect audit database", "error", err)
			os.Exit(1)
		}
		recorder = audit.NewRecorder(store, cfg.Audit.QueueSize, cfg.Audit.WriteTimeout)
		slog.Info("parse audit enabled", "queue_size", cfg.Audit.QueueSize)
	}

	server := web.NewServer(service, cfg, recorder)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active parses to complete (with timeout)
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for parses to complete", "active", status.Active)
			if err := service.WaitForParses(shutdownCtx); err != nil {
				slog.Warn("parses did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		if err := recorder.Close(shutdownCtx); err != nil {
			slog.Warn("audit queue not drained", "error", err)
		}
		reporting.Flush(2 * time.Second)
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
