package main

import (
	"os"

	"github.com/spf13/cobra"

	"timesheet/internal/backend"
	"timesheet/internal/cli"
	"timesheet/internal/config"
	applog "timesheet/internal/log"
	"timesheet/internal/render/pdf"
	"timesheet/internal/services"
)

// app is the state shared by every subcommand once the root has run.
type app struct {
	cfg    *config.Config
	logger *applog.Logger
	store  *backend.BackendResult
}

func (a *app) entries() *services.EntryService {
	return services.NewEntryService(a.store.Backend, a.cfg.DefaultUserID)
}

func (a *app) invoices(ic services.InvoiceConfig) *services.InvoiceService {
	return services.NewInvoiceService(a.store.Backend, pdf.New(), ic)
}

func newRootCmd(args ...string) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "timesheetctl",
		Short:         "Log work hours and build invoices",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cli.LoadEnvFile()
			cfg, err := cli.LoadConfig()
			if err != nil {
				return err
			}
			lc := applog.ConfigFrom(cfg.LogLevel, cfg.LogFormat, applog.ComponentCLI)
			lc.Output = os.Stderr
			a.cfg = cfg
			a.logger = applog.New(lc)

			a.store, err = cli.OpenBackend(cmd.Context(), cfg, a.logger)
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.store.Close()
		},
	}
	root.AddCommand(newEntriesCmd(a), newInvoiceCmd(a))
	root.SetArgs(args)
	return root
}
