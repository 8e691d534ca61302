package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"timesheet/internal/cache"
	"timesheet/internal/cli"
	apphttp "timesheet/internal/http"
	applog "timesheet/internal/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	bootLogger := applog.New(applog.DefaultConfig())
	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.Fatal(bootLogger, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	caches := cache.NewManager()
	if res.Cache != nil {
		caches.Register(res.Cache)
		caches.StartCleanup(time.Minute)
	}
	defer caches.Stop()

	entries, invoices := cli.NewServices(cfg, res.Backend)
	srv := apphttp.NewServer(apphttp.Deps{
		Addr:               ":" + cfg.Port,
		Entries:            entries,
		Invoices:           invoices,
		Health:             res.Backend,
		Backend:            cfg.DataBackend,
		Settings:           cfg.Presence(),
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		BlockSuspicious:    true,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting timesheet server",
			"port", cfg.Port,
			applog.FieldBackend, cfg.DataBackend,
			"hourly_rate", cfg.HourlyRate.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		return
	}
	logger.Info("Server stopped gracefully")
}
