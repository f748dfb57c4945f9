// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lead-hunter/internal/app"
	"lead-hunter/internal/common/camunda"
	"lead-hunter/internal/common/config"
	"lead-hunter/internal/common/logger"
	"lead-hunter/internal/common/observability"
	huntleads "lead-hunter/internal/workers/leads/hunt-leads"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting lead hunter",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	report := cfg.Validate()
	for _, w := range report.Warnings {
		zapLog.Warn("config warning", zap.String("issue", w))
	}
	for _, e := range report.Errors {
		zapLog.Error("config issue", zap.String("issue", e))
	}

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := app.Build(ctx, cfg, log, app.Options{
		ConnectRetries: 15,
		RetryDelay:     2 * time.Second,
		Migrate:        true,
		Observability:  obs,
	})
	if err != nil {
		zapLog.Fatal("engine init failed", zap.Error(err))
	}

	// --- Zeebe worker (optional) ---
	var (
		zeebe   *camunda.Client
		handler *huntleads.Handler
	)
	if cfg.Camunda.Enabled() && config.IsWorkerEnabled(cfg, config.HuntWorkerName) {
		err = app.RetryWithBackoff(ctx, func() error {
			var err error
			zeebe, err = camunda.NewClient(camunda.ConfigFromApp(cfg.Camunda))
			return err
		}, 10, 2*time.Second, log, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}

		handler, err = huntleads.NewHandler(huntleads.HandlerOptions{
			AppConfig: cfg,
			Camunda:   zeebe,
			Hunts:     engine.Dispatcher,
			Logger:    log,
		})
		if err != nil {
			zapLog.Fatal("failed to create hunt-leads handler", zap.Error(err))
		}
		if err := handler.Register(); err != nil {
			zapLog.Fatal("failed to register hunt-leads worker", zap.Error(err))
		}
	} else {
		zapLog.Info("Zeebe worker disabled")
	}

	// --- HTTP API ---
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      engine.Server().Routes(),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}
	errCh := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received")
	case err := <-errCh:
		zapLog.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if handler != nil {
		handler.Close()
	}
	if err := engine.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("engine shutdown incomplete", zap.Error(err))
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown failed", zap.Error(err))
	}

	zapLog.Info("Lead hunter stopped gracefully")
}
