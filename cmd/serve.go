package cmd

import (
	"context"

	"quorum-booking/core/server"

	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until interrupted.

With queue.enabled and queue.embed_worker set, the notice worker runs in the
same process.

Example:
  quorum-booking serve --config ./config.yaml
  STORE_DRIVER=postgres quorum-booking serve --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				rootOpts.cfg.Server.Port = port
			}
			return withApp(cmd.Context(), rootOpts, func(ctx context.Context, app *server.App) error {
				return app.Serve(ctx)
			})
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "override server.port")

	return cmd
}
