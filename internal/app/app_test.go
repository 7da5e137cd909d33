package app

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newspaper-etl/internal/config"
)

func TestPipelineScrapesCleansAndLoads(t *testing.T) {
	var hits atomic.Int32
	srv := newFixtureServer(t, &hits)

	cfg := sqliteConfig()
	cfg.NewsSites = map[string]config.SiteConfig{"fixture": fixtureSite(srv.URL)}
	dir := t.TempDir()
	cfg.Output.Dir = filepath.Join(dir, "raw")
	cfg.Transform.OutputDir = filepath.Join(dir, "clean")
	cfg.Observability.MetricsPath = filepath.Join(dir, "newsetl.prom")

	a, err := New(cfg, discardLogger())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	ctx := context.Background()
	require.NoError(t, a.Pipeline(ctx, nil))

	count, err := a.loader.repo.CountByNewspaper(ctx, "fixture")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.FileExists(t, cfg.Observability.MetricsPath)

	// a second run updates the same rows
	require.NoError(t, a.Pipeline(ctx, []string{"fixture"}))
	count, err = a.loader.repo.CountByNewspaper(ctx, "fixture")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestScrapeRejectsUnknownSite(t *testing.T) {
	cfg := testConfig(map[string]config.SiteConfig{"fixture": fixtureSite("http://127.0.0.1:1")}, 0)
	a, err := New(cfg, discardLogger())
	require.NoError(t, err)

	_, err = a.Scrape(context.Background(), []string{"nope"})
	assert.ErrorIs(t, err, config.ErrUnknownSite)
}

func TestPipelineWithoutStorage(t *testing.T) {
	cfg := testConfig(map[string]config.SiteConfig{"fixture": fixtureSite("http://127.0.0.1:1")}, 0)
	a, err := New(cfg, discardLogger())
	require.NoError(t, err)

	err = a.Pipeline(context.Background(), nil)
	assert.ErrorContains(t, err, "storage is not configured")
}
