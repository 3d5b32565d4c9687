package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quorum-booking/core/config"
	"quorum-booking/core/logger"
	"quorum-booking/core/server"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Verbose    bool

	cfg *config.Config
}

// NewRootCommand creates the root command for the booking service.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "quorum-booking",
		Short: "Group room booking with consensus confirmation",
		Long: `quorum-booking reserves discussion rooms for groups.

A booking is confirmed only after every invited member accepts; a decline
or departure that leaves fewer than three members cancels it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigFile)
			if err != nil {
				return err
			}
			level := cfg.App.LogLevel
			if opts.Verbose {
				level = "debug"
			}
			logger.Init(level, cfg.App.LogFormat, cmd.ErrOrStderr())
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewWorkerCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp opens the configured resources for the lifetime of fn.
func withApp(ctx context.Context, opts *RootOptions, fn func(context.Context, *server.App) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.Open(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}
