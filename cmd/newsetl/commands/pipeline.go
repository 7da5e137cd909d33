package commands

import (
	"context"

	"github.com/spf13/cobra"

	"newspaper-etl/internal/app"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline [news_site...]",
	Short: "Scrapes, cleans and loads, once or on the configured schedule.",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, uid := range args {
			if _, err := cfg.Site(uid); err != nil {
				return err
			}
		}

		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			return app.Schedule(ctx, cfg, logger, func(ctx context.Context) error {
				return a.Pipeline(ctx, args)
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
}
