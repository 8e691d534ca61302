package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"timesheet/internal/cli"
	"timesheet/internal/core"
	"timesheet/internal/invoice"
	"timesheet/internal/services"
)

func newInvoiceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Summarize a period and render the invoice PDF",
	}
	cmd.AddCommand(newInvoiceSummaryCmd(a), newInvoicePDFCmd(a))
	return cmd
}

// rangeFlags binds the exclusive --start/--end bounds.
func rangeFlags(cmd *cobra.Command, r *core.DateRange) {
	cmd.Flags().StringVar(&r.Start, "start", "", "exclusive lower bound, YYYY-MM-DD")
	cmd.Flags().StringVar(&r.End, "end", "", "exclusive upper bound, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

func (a *app) invoiceConfig(rate string) (services.InvoiceConfig, error) {
	ic := cli.InvoiceConfig(a.cfg)
	if rate == "" {
		return ic, nil
	}
	d, err := decimal.NewFromString(rate)
	if err != nil || !d.IsPositive() {
		return ic, fmt.Errorf("invalid --rate %q: must be a positive number", rate)
	}
	ic.Rate = d
	return ic, nil
}

func newInvoiceSummaryCmd(a *app) *cobra.Command {
	var (
		r      core.DateRange
		rate   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Group the period by month and price it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ic, err := a.invoiceConfig(rate)
			if err != nil {
				return err
			}
			p, err := a.invoices(ic).Period(cmd.Context(), r)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), p.Summary)
			}
			return printSummary(cmd, p.Summary)
		},
	}
	rangeFlags(cmd, &r)
	cmd.Flags().StringVar(&rate, "rate", "", "hourly rate (defaults to HOURLY_RATE)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printSummary(cmd *cobra.Command, s invoice.Summary) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Period: %s\n\n", s.Period)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "MONTH\tDAYS\tHOURS\tAMOUNT\t")
	for _, m := range s.Months {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n", m.Label, m.Count, m.Hours.StringFixed(2), m.Amount.StringFixed(2))
	}
	fmt.Fprintf(tw, "Total\t%d\t%s\t%s\t\n", s.TotalEntries, s.TotalHours.StringFixed(2), s.TotalAmount.StringFixed(2))
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nRate: %s per hour\n", s.HourlyRate.StringFixed(2))
	return err
}

func newInvoicePDFCmd(a *app) *cobra.Command {
	var (
		r   core.DateRange
		out string
	)
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Render the invoice for a period to a PDF file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ic, err := a.invoiceConfig("")
			if err != nil {
				return err
			}
			svc := a.invoices(ic)
			p, err := svc.Period(cmd.Context(), r)
			if err != nil {
				return err
			}
			if out == "" {
				out = invoice.Filename(r)
			}
			f, err := os.Create(filepath.Clean(out))
			if err != nil {
				return err
			}
			inv, err := svc.Generate(cmd.Context(), f, p.Summary, r)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return errors.Join(err, os.Remove(out))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %s)\n", out, inv.Number, inv.Summary.TotalAmount.StringFixed(2))
			return nil
		},
	}
	rangeFlags(cmd, &r)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default invoice-{start}-to-{end}.pdf)")
	return cmd
}
