package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"newspaper-etl/internal/app"
)

var transformCmd = &cobra.Command{
	Use:   "transform <file>",
	Short: "Cleans a scraped CSV file and writes clean_<file> to transform.output_dir.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(_ context.Context, a *app.App) error {
			out, err := a.Transform(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
}
