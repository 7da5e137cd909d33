package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"newspaper-etl/internal/config"
	"newspaper-etl/internal/observability"
	"newspaper-etl/internal/scraper"
)

// Sink receives each site's successful articles once all fetches are done.
type Sink interface {
	Write(siteUID string, records []scraper.ArticleRecord) (string, error)
}

// Tasks is the pair of per-site fetch tasks the orchestrator schedules.
type Tasks interface {
	DiscoverLinks(ctx context.Context, siteUID string) scraper.LinkDiscoveryResult
	FetchArticle(ctx context.Context, siteUID, link string) scraper.ArticleRecord
}

type Orchestrator struct {
	cfg     *config.Config
	logger  *observability.Logger
	tasks   Tasks
	sink    Sink
	metrics *observability.Metrics
}

func NewOrchestrator(
	cfg *config.Config,
	logger *observability.Logger,
	tasks Tasks,
	sink Sink,
	metrics *observability.Metrics,
) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		logger:  logger,
		tasks:   tasks,
		sink:    sink,
		metrics: metrics,
	}
}

type RunStats struct {
	Sites             int
	FailedSites       int
	LinksDiscovered   int
	ArticlesAttempted int
	ArticlesEmitted   int
	ArticlesFailed    int
	ArticlesEmpty     int
	Files             map[string]string
}

type articleTask struct {
	siteUID string
	link    string
}

// Run scrapes the given sites in two waves. Every homepage is fetched before
// any article; every article is fetched before anything reaches the sink.
// Task failures are logged and dropped, never returned. The error reports sink
// failures only.
func (o *Orchestrator) Run(ctx context.Context, siteUIDs []string) (scraper.FetchBatch, *RunStats, error) {
	stats := &RunStats{Sites: len(siteUIDs), Files: make(map[string]string)}
	o.logger.Info("Beginning scraper", "sites", len(siteUIDs), "max_in_flight", o.cfg.Concurrency.MaxInFlight)

	// Wave 1: link discovery
	discoveries := runWave(ctx, o.cfg.Concurrency.MaxInFlight, len(siteUIDs), func(ctx context.Context, i int) scraper.LinkDiscoveryResult {
		return o.tasks.DiscoverLinks(ctx, siteUIDs[i])
	})

	var pending []articleTask
	for _, d := range discoveries {
		if d.Err != nil {
			stats.FailedSites++
			o.logger.Error("ERROR fetching links", "site", d.SiteUID, "error", d.Err.Error())
			continue
		}
		o.logger.Info("Links discovered", "site", d.SiteUID, "links", len(d.Links))
		stats.LinksDiscovered += len(d.Links)
		for _, link := range sortedLinks(d.Links) {
			pending = append(pending, articleTask{siteUID: d.SiteUID, link: link})
		}
	}

	// Wave 2: article fetch
	stats.ArticlesAttempted = len(pending)
	articles := runWave(ctx, o.cfg.Concurrency.MaxInFlight, len(pending), func(ctx context.Context, i int) scraper.ArticleRecord {
		return o.tasks.FetchArticle(ctx, pending[i].siteUID, pending[i].link)
	})

	batch := make(scraper.FetchBatch, len(siteUIDs))
	for _, uid := range siteUIDs {
		batch[uid] = []scraper.ArticleRecord{}
	}
	for _, a := range articles {
		switch {
		case errors.Is(a.Err, scraper.ErrNoBody):
			stats.ArticlesEmpty++
			o.logger.Warn("Invalid article. There is no body", "site", a.SiteUID, "url", a.URL)
		case a.Err != nil:
			stats.ArticlesFailed++
			o.logger.Error("ERROR fetching article", "site", a.SiteUID, "url", a.URL, "error", a.Err.Error())
		case !a.Valid():
			stats.ArticlesEmpty++
			o.logger.Warn("Invalid article. There is no body", "site", a.SiteUID, "url", a.URL)
		default:
			batch[a.SiteUID] = append(batch[a.SiteUID], a)
			stats.ArticlesEmitted++
		}
	}

	var sinkErrs []error
	for _, uid := range siteUIDs {
		records := batch[uid]
		if o.metrics != nil {
			o.metrics.ArticlesEmitted.WithLabelValues(uid).Add(float64(len(records)))
		}
		if o.sink == nil {
			continue
		}
		path, err := o.sink.Write(uid, records)
		if err != nil {
			o.logger.Error("Failed to write articles", "site", uid, "error", err.Error())
			sinkErrs = append(sinkErrs, fmt.Errorf("site %s: %w", uid, err))
			continue
		}
		stats.Files[uid] = path
		o.logger.Info("Articles written", "site", uid, "articles", len(records), "path", path)
	}

	if o.metrics != nil {
		o.metrics.LastRunTimestamp.SetToCurrentTime()
	}

	o.logger.Info("Scraper finished",
		"sites", stats.Sites,
		"failed_sites", stats.FailedSites,
		"links", stats.LinksDiscovered,
		"articles_emitted", stats.ArticlesEmitted,
		"articles_failed", stats.ArticlesFailed,
		"articles_empty", stats.ArticlesEmpty,
	)

	return batch, stats, errors.Join(sinkErrs...)
}

// runWave runs n independent tasks with at most limit in flight (no cap when
// limit is zero) and waits for all of them. Each task owns its result slot.
func runWave[T any](ctx context.Context, limit, n int, task func(ctx context.Context, i int) T) []T {
	results := make([]T, n)
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			results[i] = task(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func sortedLinks(links scraper.LinkSet) []string {
	out := make([]string, 0, len(links))
	for l := range links {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
