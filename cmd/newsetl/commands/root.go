package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"newspaper-etl/internal/app"
	"newspaper-etl/internal/config"
	"newspaper-etl/internal/observability"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:   "newsetl [news_site]",
	Short: "newsetl scrapes configured news sites into per-site CSV files.",
	Long: `newsetl fetches every configured homepage, then every article linked from
them, and writes one CSV file per site. With a news_site argument only that
site is scraped.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		var sites []string
		if len(args) == 1 {
			if _, err := cfg.Site(args[0]); err != nil {
				return fmt.Errorf("invalid argument %q for news_site: choose from %s",
					args[0], strings.Join(cfg.SiteUIDs(), ", "))
			}
			sites = args
		}

		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			files, err := a.Scrape(ctx, sites)
			for uid, path := range files {
				logger.Info("Scraped site", "site", uid, "file", path)
			}
			return err
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path to the YAML config file.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override observability.log_level (debug, info, warn, error).")
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	var err error
	cfg, err = config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Observability.LogLevel = logLevel
	}

	o := cfg.Observability
	logger = observability.NewLogger(o.LogPath, o.LogLevel, observability.Rotation{
		MaxSizeMB:  o.LogMaxSizeMB,
		MaxBackups: o.LogMaxBackups,
		MaxAgeDays: o.LogMaxAgeDays,
	})
	return nil
}

// withApp builds the App, cancels ctx on SIGINT/SIGTERM and closes the App
// when fn returns.
func withApp(parent context.Context, fn func(ctx context.Context, a *app.App) error) error {
	ctx, cancel := app.GracefulShutdown(parent, logger)
	defer cancel()

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("Failed to close app", "error", err.Error())
		}
	}()

	return fn(ctx, a)
}

func ExecuteContext(ctx context.Context) {
	if err := execute(ctx); err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree and closes the logger whatever the outcome.
func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if logger != nil {
		if err != nil {
			logger.Error("Command failed", "error", err.Error())
		}
		_ = logger.Close()
		logger = nil
	}
	return err
}
