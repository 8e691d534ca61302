package main

import (
	"context"
	"errors"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"timesheet/internal/amqp"
	"timesheet/internal/backend"
	"timesheet/internal/cli"
	applog "timesheet/internal/log"
	gsheet "timesheet/internal/sheets/google"
	"timesheet/internal/storage"
	"timesheet/internal/worker"
)

// The worker mirrors the SQLite record store into the Google Sheet. It
// drains entry events from AMQP and backfills the whole table on start-up
// to pick up anything written while it was down.
func main() {
	cli.LoadEnvFile()

	bootLogger := applog.New(applog.DefaultConfig())
	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.Fatal(bootLogger, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)
	logger.Info("Starting timesheet-worker")

	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "AMQP_URL is required for the worker", errors.New("no broker configured"))
	}
	if !cfg.Google.HasSheets() {
		cli.Fatal(logger, "A Google Spreadsheet is required for the worker", errors.New("sheets not configured"))
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	repo, err := storage.NewSQLiteRepository(filepath.Clean(cfg.SQLiteDBPath))
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err)
	}
	defer repo.Close()

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	sheet, err := gsheet.New(ctx, bc.Sheets)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}
	if err := sheet.EnsureHeader(ctx); err != nil {
		cli.Fatal(logger, "Failed to prepare sheet", err)
	}
	logger.Info("Google Sheets client initialized", "sheet", bc.Sheets.SheetName)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	mirror := worker.NewMirrorWorker(repo, sheet)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Performing startup backfill")
		if _, err := mirror.Backfill(gctx); err != nil {
			logger.Error("Startup backfill incomplete", applog.FieldError, err)
		}
		return nil
	})
	g.Go(func() error {
		return client.ConsumeEntryEvents(gctx, mirror.HandleEvent)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		return
	}
	logger.Info("Worker stopped gracefully")
}
