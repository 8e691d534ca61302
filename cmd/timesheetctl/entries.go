package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"timesheet/internal/core"
)

func newEntriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List and add time entries",
	}
	cmd.AddCommand(newEntriesListCmd(a), newEntriesAddCmd(a))
	return cmd
}

func newEntriesListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.entries().Recent(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				if list == nil {
					list = []core.Entry{}
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"entries": list})
			}
			return printEntries(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newEntriesAddCmd(a *app) *cobra.Command {
	var e core.Entry
	var hours string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a work session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e.Hours = core.Hours(hours)
			created, err := a.entries().Create(cmd.Context(), e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s hours on %s (%s)\n", created.Hours, created.Date, created.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&e.Date, "date", "", "day worked, YYYY-MM-DD")
	f.StringVar(&e.TimeIn, "in", "", "start time, HH:MM")
	f.StringVar(&e.TimeOut, "out", "", "end time, HH:MM")
	f.StringVar(&e.Description, "desc", "", "what you worked on")
	f.StringVar(&hours, "hours", "", "hours worked (derived from --in/--out when omitted)")
	f.StringVar(&e.WinOfDay, "win", "", "what went well")
	f.StringVar(&e.TomorrowPlan, "plan", "", "plan for tomorrow")
	for _, name := range []string{"date", "in", "out", "desc"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func printEntries(w io.Writer, list []core.Entry) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No time entries yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tIN\tOUT\tHOURS\tDESCRIPTION")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Date, e.TimeIn, e.TimeOut, e.Hours, e.Description)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
