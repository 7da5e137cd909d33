package commands

import (
	"context"

	"github.com/spf13/cobra"

	"newspaper-etl/internal/app"
)

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Upserts a cleaned CSV file into the configured storage.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			_, err := a.Load(ctx, args[0])
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
