package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	result := cli.InitBackend(startupCtx, logger, cfg, true)
	startupCancel()
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		UserID:             cfg.DemoUserID,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		DashboardCacheTTL:  cfg.DashboardCacheTTL,
		Logger:             logger,
	}, result.Store, result.Publisher)
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := cli.NotifyShutdown(context.Background(), logger)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", result.Publisher != nil,
		)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
