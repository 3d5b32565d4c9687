package cmd

import (
	"context"

	"quorum-booking/core/server"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, func(ctx context.Context, app *server.App) error {
				if err := app.Migrate(ctx); err != nil {
					return err
				}
				cmd.Println("schema is up to date")
				return nil
			})
		},
	}
}
