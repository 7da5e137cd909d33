package scraper

import (
	"context"
	"fmt"
	"time"

	"newspaper-etl/internal/config"
	"newspaper-etl/internal/fetcher"
	"newspaper-etl/internal/observability"
)

// Fetcher is the page source used by the fetch tasks. Both the HTTP fetcher
// and the headless browser satisfy it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.FetchResponse, error)
}

// Scraper runs the per-site fetch tasks. Tasks never fail past their own
// boundary: every error is returned inside the result value.
type Scraper struct {
	cfg      *config.Config
	fetcher  Fetcher
	renderer Fetcher
	logger   *observability.Logger
	metrics  *observability.Metrics
}

type Option func(*Scraper)

// WithRenderer routes sites configured with render: true through r.
func WithRenderer(r Fetcher) Option {
	return func(s *Scraper) { s.renderer = r }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scraper) { s.metrics = m }
}

func NewScraper(cfg *config.Config, f Fetcher, logger *observability.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		cfg:     cfg,
		fetcher: f,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DiscoverLinks fetches the site's homepage and collects its article links.
func (s *Scraper) DiscoverLinks(ctx context.Context, siteUID string) LinkDiscoveryResult {
	result := LinkDiscoveryResult{SiteUID: siteUID, Links: NewLinkSet()}
	start := time.Now()

	site, err := s.cfg.Site(siteUID)
	if err != nil {
		result.Err = err
		s.observe(observability.KindHomepage, observability.OutcomeError, start)
		return result
	}

	s.logger.Info("Start fetching links", "site", siteUID, "url", site.URL)

	page, err := s.visit(ctx, site, site.URL)
	if err != nil {
		result.Err = fmt.Errorf("fetching links: %w", err)
		s.observe(observability.KindHomepage, observability.OutcomeError, start)
		return result
	}

	result.Links = page.Links(site.Queries.HomepageArticleLinks)
	s.observe(observability.KindHomepage, observability.OutcomeOK, start)
	return result
}

// FetchArticle resolves link against the site host and extracts title and body.
func (s *Scraper) FetchArticle(ctx context.Context, siteUID, link string) ArticleRecord {
	record := ArticleRecord{SiteUID: siteUID, URL: link}
	start := time.Now()

	site, err := s.cfg.Site(siteUID)
	if err != nil {
		record.Err = err
		s.observe(observability.KindArticle, observability.OutcomeError, start)
		return record
	}

	record.URL = ResolveLink(site.URL, link)
	s.logger.Debug("Start fetching article", "site", siteUID, "url", record.URL)

	page, err := s.visit(ctx, site, record.URL)
	if err != nil {
		record.Err = fmt.Errorf("fetching article: %w", err)
		s.observe(observability.KindArticle, observability.OutcomeError, start)
		return record
	}

	record.Title = page.Title(site.Queries.ArticleTitle)
	record.Body = page.Body(site.Queries.ArticleBody)
	if !record.Valid() {
		record.Err = ErrNoBody
		s.observe(observability.KindArticle, observability.OutcomeEmpty, start)
		return record
	}

	s.observe(observability.KindArticle, observability.OutcomeOK, start)
	return record
}

func (s *Scraper) visit(ctx context.Context, site config.SiteConfig, url string) (*Page, error) {
	f := s.fetcher
	if site.Render && s.renderer != nil {
		f = s.renderer
	}

	resp, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return NewPage(resp.Body)
}

func (s *Scraper) observe(kind, outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.FetchTotal.WithLabelValues(kind, outcome).Inc()
	s.metrics.FetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
