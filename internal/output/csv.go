package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"newspaper-etl/internal/config"
	"newspaper-etl/internal/scraper"
)

// CSVSink writes one CSV file per site for the transform stage.
type CSVSink struct {
	dir   string
	style string
	now   func() time.Time
}

func NewCSVSink(cfg *config.Config) *CSVSink {
	return &CSVSink{
		dir:   cfg.Output.Dir,
		style: cfg.Output.FilenameStyle,
		now:   time.Now,
	}
}

// FileName builds {uid}_{ddmmyyyy}_articles.csv, or {uid}_{ddmmyyyy}.csv for
// the aggregate style.
func FileName(siteUID string, date time.Time, style string) string {
	stamp := date.Format("02012006")
	if style == config.FilenameStyleAggregate {
		return fmt.Sprintf("%s_%s.csv", siteUID, stamp)
	}
	return fmt.Sprintf("%s_%s_articles.csv", siteUID, stamp)
}

// Write stores records under the site's file name and returns its path. The
// header is always written, so a site without articles gets an empty table.
func (s *CSVSink) Write(siteUID string, records []scraper.ArticleRecord) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(s.dir, FileName(siteUID, s.now(), s.style))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(file)
	if err := w.Write(scraper.ArticleCSVHeader); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(r.CSVRow()); err != nil {
			_ = file.Close()
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	return path, nil
}
