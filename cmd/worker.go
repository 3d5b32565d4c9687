package cmd

import (
	"context"

	"quorum-booking/core/server"

	"github.com/spf13/cobra"
)

// NewWorkerCommand creates the worker command.
func NewWorkerCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Deliver queued booking notices",
		Long: `Consume booking notices from the Redis-backed queue.

Requires redis.enabled and queue.enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, func(ctx context.Context, app *server.App) error {
				return app.Work(ctx)
			})
		},
	}
}
