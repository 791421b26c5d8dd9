package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newRefsCmd(app *adminApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "Inspect and manage ref counters",
	}
	cmd.AddCommand(newRefsNextCmd(app), newRefsCurrentCmd(app), newRefsSyncRedisCmd(app))
	return cmd
}

func newRefsNextCmd(app *adminApp) *cobra.Command {
	var prefix, entity string
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Generate the next ref for a prefix or entity kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (prefix == "") == (entity == "") {
				return errors.New("exactly one of --prefix or --entity is required")
			}
			return app.withBackend(cmd.Context(), false, func(b *backend) error {
				var (
					ref string
					err error
				)
				if prefix != "" {
					ref, err = b.Refs.Next(cmd.Context(), prefix)
				} else {
					ref, err = b.Refs.NextFor(cmd.Context(), entity)
				}
				if err != nil {
					return err
				}
				cmd.Println(ref)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "ref prefix, e.g. JD-")
	cmd.Flags().StringVar(&entity, "entity", "", "entity kind, e.g. job_dispatch")
	return cmd
}

func newRefsCurrentCmd(app *adminApp) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Print the last issued sequence number for a prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withBackend(cmd.Context(), false, func(b *backend) error {
				v, err := b.Refs.Current(cmd.Context(), prefix)
				if err != nil {
					return err
				}
				cmd.Printf("%s %d\n", prefix, v)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "ref prefix, e.g. JD-")
	_ = cmd.MarkFlagRequired("prefix")
	return cmd
}

func newRefsSyncRedisCmd(app *adminApp) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "sync-redis",
		Short: "Raise the Redis counter to at least the Postgres counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withBackend(cmd.Context(), true, func(b *backend) error {
				v, err := b.Refs.SyncSecondary(cmd.Context(), prefix)
				if err != nil {
					return err
				}
				cmd.Printf("redis counter for %s is at %d\n", prefix, v)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "ref prefix, e.g. JD-")
	_ = cmd.MarkFlagRequired("prefix")
	return cmd
}
