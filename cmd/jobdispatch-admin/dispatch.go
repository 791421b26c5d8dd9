package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/target/jobdispatch/internal/domain/model"
	"github.com/target/jobdispatch/internal/domain/projection"
)

func newDispatchCmd(app *adminApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Inspect job dispatch records",
	}
	cmd.AddCommand(newDispatchShowCmd(app), newDispatchStatsCmd(app))
	return cmd
}

func newDispatchShowCmd(app *adminApp) *cobra.Command {
	var (
		fields  string
		filters []string
	)
	cmd := &cobra.Command{
		Use:   "show <id|ref>",
		Short: "Print a job dispatch with its audit counts and requested derived fields",
		Long:  "Keys that parse as a UUID are looked up by id; anything else is treated as a ref.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := buildFieldSet(fields, filters)
			if err != nil {
				return err
			}
			key := strings.TrimSpace(args[0])
			return app.withBackend(cmd.Context(), false, func(b *backend) error {
				var view *projection.View
				if uuid.Validate(key) == nil {
					view, err = b.Dispatches.GetView(cmd.Context(), key, fs)
				} else {
					view, err = b.Dispatches.GetViewByRef(cmd.Context(), key, fs)
				}
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			})
		},
	}
	cmd.Flags().StringVar(&fields, "fields", "", "derived fields to include, e.g. logs,errors.message,apiLogs")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "JMESPath filter for a collection as name=expression (repeatable)")
	return cmd
}

func buildFieldSet(fields string, filters []string) (projection.FieldSet, error) {
	fs := projection.ParseFields(fields)
	for _, f := range filters {
		name, expr, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("filter %q must be name=expression", f)
		}
		if err := fs.SetFilter(name, expr); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

func newDispatchStatsCmd(app *adminApp) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print job dispatch counts per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withBackend(cmd.Context(), false, func(b *backend) error {
				stats, err := b.Dispatches.Stats(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "STATUS\tCOUNT")
				total := 0
				for _, s := range model.AllJobDispatchStatuses {
					fmt.Fprintf(w, "%s\t%d\n", s, stats[s])
					total += stats[s]
				}
				fmt.Fprintf(w, "total\t%d\n", total)
				return w.Flush()
			})
		},
	}
}
