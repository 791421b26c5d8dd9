package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/target/jobdispatch/config"
)

const defaultMigrationTimeout = 5 * time.Minute

type rootOptions struct {
	Logger     *slog.Logger
	Out        io.Writer
	LoadConfig func() (config.AppConfig, error)
	Open       openFunc
}

// adminApp carries state shared by every subcommand.
type adminApp struct {
	opts *rootOptions
	cfg  config.AppConfig
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	app := &adminApp{opts: opts}

	root := &cobra.Command{
		Use:           "jobdispatch-admin",
		Short:         "Administer job dispatch records and ref counters",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg, err := opts.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			app.cfg = cfg
			return nil
		},
	}
	root.SetOut(opts.Out)

	root.AddCommand(
		newMigrateCmd(app),
		newRefsCmd(app),
		newDispatchCmd(app),
	)
	return root
}

// withBackend opens the backend, runs fn and closes every connection afterwards.
func (a *adminApp) withBackend(ctx context.Context, wantRedis bool, fn func(*backend) error) (err error) {
	b, err := a.opts.Open(ctx, &openRequest{Config: &a.cfg, Logger: a.opts.Logger, WantRedis: wantRedis})
	if err != nil {
		return err
	}
	defer func() {
		if b.Close != nil {
			err = errors.Join(err, b.Close())
		}
	}()
	return fn(b)
}

func newMigrateCmd(app *adminApp) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return app.withBackend(ctx, false, func(b *backend) error {
				if err := b.Migrate(ctx); err != nil {
					return err
				}
				cmd.Println("migrations applied")
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", defaultMigrationTimeout, "maximum time to wait for migrations")
	return cmd
}
