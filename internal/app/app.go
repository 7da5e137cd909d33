package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"newspaper-etl/internal/config"
	"newspaper-etl/internal/fetcher"
	"newspaper-etl/internal/normalize"
	"newspaper-etl/internal/observability"
	"newspaper-etl/internal/output"
	"newspaper-etl/internal/scraper"
)

// App wires the three ETL stages from one config.
type App struct {
	cfg     *config.Config
	logger  *observability.Logger
	metrics *observability.Metrics

	browser *fetcher.Browser
	scraper *scraper.Scraper
	sink    *output.CSVSink
	cleaner *normalize.Cleaner
	loader  *Loader
}

func New(cfg *config.Config, logger *observability.Logger) (*App, error) {
	metrics := observability.NewMetrics()

	a := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		sink:    output.NewCSVSink(cfg),
		cleaner: normalize.NewCleaner(cfg, logger),
	}

	opts := []scraper.Option{scraper.WithMetrics(metrics)}
	if cfg.NeedsBrowser() {
		b, err := fetcher.NewBrowser(cfg, logger)
		if err != nil {
			return nil, err
		}
		a.browser = b
		opts = append(opts, scraper.WithRenderer(b))
	}
	a.scraper = scraper.NewScraper(cfg, fetcher.NewFetcher(cfg, logger), logger, opts...)

	return a, nil
}

// Scrape runs the two-wave fetch for siteUIDs, or for every configured site
// when none are given, and returns the written CSV paths by site.
func (a *App) Scrape(ctx context.Context, siteUIDs []string) (map[string]string, error) {
	if len(siteUIDs) == 0 {
		siteUIDs = a.cfg.SiteUIDs()
	}
	for _, uid := range siteUIDs {
		if _, err := a.cfg.Site(uid); err != nil {
			return nil, err
		}
	}

	logger := a.logger.With("run_id", uuid.New().String())
	orch := NewOrchestrator(a.cfg, logger, a.scraper, a.sink, a.metrics)
	_, stats, err := orch.Run(ctx, siteUIDs)
	a.flushMetrics()
	return stats.Files, err
}

func (a *App) Transform(path string) (string, error) {
	outPath, _, err := a.cleaner.CleanFile(path)
	return outPath, err
}

func (a *App) Load(ctx context.Context, path string) (*LoadStats, error) {
	loader, err := a.openLoader()
	if err != nil {
		return nil, err
	}
	stats, err := loader.LoadFile(ctx, path)
	a.flushMetrics()
	return stats, err
}

// Pipeline scrapes, cleans every produced file and loads the clean files.
// A failing file is logged and skipped so other sites still reach storage.
func (a *App) Pipeline(ctx context.Context, siteUIDs []string) error {
	loader, err := a.openLoader()
	if err != nil {
		return err
	}

	files, scrapeErr := a.Scrape(ctx, siteUIDs)

	uids := make([]string, 0, len(files))
	for uid := range files {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	errs := []error{scrapeErr}
	for _, uid := range uids {
		cleanPath, err := a.Transform(files[uid])
		if err != nil {
			a.logger.Error("Transform failed", "site", uid, "file", files[uid], "error", err.Error())
			errs = append(errs, fmt.Errorf("transform %s: %w", uid, err))
			continue
		}
		if _, err := loader.LoadFile(ctx, cleanPath); err != nil {
			a.logger.Error("Load failed", "site", uid, "file", cleanPath, "error", err.Error())
			errs = append(errs, fmt.Errorf("load %s: %w", uid, err))
		}
	}
	a.flushMetrics()
	return errors.Join(errs...)
}

func (a *App) openLoader() (*Loader, error) {
	if a.loader != nil {
		return a.loader, nil
	}
	repo, err := OpenRepository(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.loader = NewLoader(repo, a.logger, a.metrics)
	return a.loader, nil
}

func (a *App) flushMetrics() {
	if err := a.metrics.WriteTextfile(a.cfg.Observability.MetricsPath); err != nil {
		a.logger.Warn("Failed to write metrics", "error", err.Error())
	}
}

func (a *App) Close() error {
	var errs []error
	if a.loader != nil {
		errs = append(errs, a.loader.Close())
	}
	if a.browser != nil {
		errs = append(errs, a.browser.Close())
	}
	return errors.Join(errs...)
}
