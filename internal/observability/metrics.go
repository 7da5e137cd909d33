package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	KindHomepage = "homepage"
	KindArticle  = "article"

	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeEmpty = "empty"

	LoadInserted = "inserted"
	LoadUpdated  = "updated"
	LoadFailed   = "error"
)

// Metrics holds the pipeline counters. Batch runs have no scrape endpoint, so
// the registry is dumped to a node-exporter textfile at the end of a run.
type Metrics struct {
	Registry *prometheus.Registry

	FetchTotal       *prometheus.CounterVec
	FetchDuration    *prometheus.HistogramVec
	ArticlesEmitted  *prometheus.CounterVec
	LoadRowsTotal    *prometheus.CounterVec
	LastRunTimestamp prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsetl_fetch_total",
			Help: "Page fetches by kind and outcome.",
		}, []string{"kind", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsetl_fetch_duration_seconds",
			Help:    "Duration of page fetches including extraction.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		ArticlesEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsetl_articles_emitted_total",
			Help: "Articles handed to the result sink per site.",
		}, []string{"site"}),
		LoadRowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsetl_load_rows_total",
			Help: "Rows processed by the load stage by outcome.",
		}, []string{"outcome"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "newsetl_last_run_timestamp_seconds",
			Help: "Unix time of the last finished scrape run.",
		}),
	}
	reg.MustRegister(m.FetchTotal, m.FetchDuration, m.ArticlesEmitted, m.LoadRowsTotal, m.LastRunTimestamp)
	return m
}

// WriteTextfile writes the registry in Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
