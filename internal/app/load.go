package app

import (
	"context"
	"fmt"

	"newspaper-etl/internal/checksum"
	"newspaper-etl/internal/config"
	"newspaper-etl/internal/normalize"
	"newspaper-etl/internal/observability"
	"newspaper-etl/internal/storage"
	"newspaper-etl/internal/storage/mssql"
	"newspaper-etl/internal/storage/sqlstore"
)

// OpenRepository picks the repository implementation for storage.driver.
func OpenRepository(cfg *config.Config, logger *observability.Logger) (storage.Repository, error) {
	switch cfg.Storage.Driver {
	case "":
		return nil, storage.ErrStorageNotConfigured
	case "mssql":
		return mssql.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
	case "postgres", "sqlite3":
		return sqlstore.Open(cfg.Storage.Driver, cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// LoadStats counts one file's rows. Stored is the number of rows of the file's
// newspaper in the table after the load.
type LoadStats struct {
	Read     int
	Inserted int
	Updated  int
	Failed   int
	Stored   int
}

// Loader writes cleaned CSV files into the articles table.
type Loader struct {
	repo     storage.Repository
	logger   *observability.Logger
	metrics  *observability.Metrics
	checksum *checksum.Generator

	schemaReady bool
}

func NewLoader(repo storage.Repository, logger *observability.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		repo:     repo,
		logger:   logger,
		metrics:  metrics,
		checksum: checksum.NewGenerator(),
	}
}

// LoadFile upserts every row of a clean CSV by URL. A failing row is logged
// and counted; the rest of the file is still loaded.
func (l *Loader) LoadFile(ctx context.Context, path string) (*LoadStats, error) {
	if !l.schemaReady {
		if err := l.repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		l.schemaReady = true
	}

	rows, err := normalize.ReadCleanFile(path)
	if err != nil {
		return nil, err
	}

	stats := &LoadStats{Read: len(rows)}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		article := l.toArticle(row)
		isNew, err := l.repo.UpsertArticle(ctx, article)
		switch {
		case err != nil:
			stats.Failed++
			l.count(observability.LoadFailed)
			l.logger.Error("Failed to load article", "url", row.URL, "error", err.Error())
		case isNew:
			stats.Inserted++
			l.count(observability.LoadInserted)
			l.logger.Debug("Article inserted", "url", row.URL)
		default:
			stats.Updated++
			l.count(observability.LoadUpdated)
			l.logger.Debug("Article updated", "url", row.URL)
		}
	}

	if len(rows) > 0 {
		stored, err := l.repo.CountByNewspaper(ctx, rows[0].NewspaperUID)
		if err != nil {
			l.logger.Warn("Failed to count stored articles", "newspaper", rows[0].NewspaperUID, "error", err.Error())
		}
		stats.Stored = stored
	}

	l.logger.Info("Load finished",
		"file", path,
		"read", stats.Read,
		"inserted", stats.Inserted,
		"updated", stats.Updated,
		"failed", stats.Failed,
		"stored", stats.Stored,
	)
	return stats, nil
}

func (l *Loader) toArticle(row normalize.CleanArticle) *storage.Article {
	return &storage.Article{
		UID:          row.UID,
		Body:         row.Body,
		Host:         row.Host,
		Title:        row.Title,
		NewspaperUID: row.NewspaperUID,
		BodyTokens:   row.BodyTokens,
		TitleTokens:  row.TitleTokens,
		URL:          row.URL,
		CheckSum:     l.checksum.GenerateContentHash(row.URL, row.Title, row.Body),
	}
}

func (l *Loader) count(outcome string) {
	if l.metrics != nil {
		l.metrics.LoadRowsTotal.WithLabelValues(outcome).Inc()
	}
}

func (l *Loader) Close() error {
	return l.repo.Close()
}
