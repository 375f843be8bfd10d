package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	logger.Info("Starting fintrack-worker")

	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Worker is using the memory backend; it cannot see records written by the server")
	}

	ctx, stop := cli.NotifyShutdown(context.Background(), logger)
	defer stop()

	// The worker consumes events; it never publishes them.
	result := cli.InitBackend(ctx, logger, cfg, false)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	// Google Sheets export is optional
	var (
		exporter sheets.TransactionExporter
		lister   sheets.TransactionLister
	)
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		exporter, lister = client, client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, events are only logged")
	}

	exportWorker := worker.NewExportWorker(result.Store, exporter, logger)

	reconcile := func() {
		if lister == nil {
			return
		}
		n, err := exportWorker.Reconcile(ctx, lister, cfg.DemoUserID, time.Now())
		if err != nil {
			logger.Error("Reconcile failed", log.FieldError, err)
			return
		}
		if n > 0 {
			logger.Info("Reconciled missing transactions", "count", n)
		}
	}

	// Catch up on events lost while the worker was down
	logger.Info("Performing startup reconcile...")
	reconcile()

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			err := amqpClient.ConsumeWithRetry(ctx, exportWorker.HandleRecordEvent)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
			stop()
		}()
	} else {
		logger.Info("Skipping AMQP message consumption - no AMQP_URL provided")
	}

	ticker := time.NewTicker(cfg.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker shutdown complete")
			return
		case <-ticker.C:
			reconcile()
		}
	}
}
