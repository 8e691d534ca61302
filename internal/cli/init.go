// Package cli holds the start-up steps shared by cmd/timesheet,
// cmd/timesheet-worker and cmd/timesheetctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"timesheet/internal/backend"
	"timesheet/internal/config"
	"timesheet/internal/invoice"
	applog "timesheet/internal/log"
	"timesheet/internal/render/pdf"
	"timesheet/internal/services"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig loads and validates the configuration.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// makes it the slog default.
func SetupLogger(cfg *config.Config, component string) *applog.Logger {
	logger := applog.New(applog.ConfigFrom(cfg.LogLevel, cfg.LogFormat, component))
	applog.SetDefault(logger)
	return logger
}

// OpenBackend creates the record store selected by DATA_BACKEND.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*backend.BackendResult, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bc)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bc.Type, err)
	}
	return res, nil
}

// InvoiceConfig maps the invoicing settings.
func InvoiceConfig(cfg *config.Config) services.InvoiceConfig {
	return services.InvoiceConfig{
		UserID:  cfg.DefaultUserID,
		Rate:    cfg.HourlyRate,
		DueDays: cfg.InvoiceDueDays,
		Business: invoice.Business{
			Name:          cfg.Business.Name,
			Email:         cfg.Business.Email,
			Tagline:       cfg.Business.Tagline,
			BillToName:    cfg.Business.WorkName,
			BillToAddress: cfg.Business.WorkAddress,
		},
	}
}

// NewServices wires the entry and invoice use cases over store.
func NewServices(cfg *config.Config, store backend.Backend) (*services.EntryService, *services.InvoiceService) {
	entries := services.NewEntryService(store, cfg.DefaultUserID)
	invoices := services.NewInvoiceService(store, pdf.New(), InvoiceConfig(cfg))
	return entries, invoices
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Fatal logs err and exits.
func Fatal(logger *applog.Logger, msg string, err error) {
	logger.Error(msg, applog.FieldError, err)
	os.Exit(1)
}
