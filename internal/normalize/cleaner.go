package normalize

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"newspaper-etl/internal/checksum"
	"newspaper-etl/internal/config"
	"newspaper-etl/internal/observability"
)

var lastPathSegment = regexp.MustCompile(`[^/]+$`)

var bodyReplacements = strings.NewReplacer("\n", " ", "\r", " ")

// RawArticle is one row of a scraper CSV.
type RawArticle struct {
	Body  string
	Title string
	URL   string
}

// CleanArticle is one row of a cleaned CSV, ready for loading.
type CleanArticle struct {
	UID          string
	Body         string
	Title        string
	URL          string
	NewspaperUID string
	Host         string
	TitleTokens  int
	BodyTokens   int
}

type Report struct {
	Read          int
	TitlesFilled  int
	Duplicates    int
	MissingValues int
	Written       int
}

// Cleaner is the transform stage between scraping and loading.
type Cleaner struct {
	cfg       *config.Config
	logger    *observability.Logger
	checksum  *checksum.Generator
	stopWords map[string]struct{}
}

func NewCleaner(cfg *config.Config, logger *observability.Logger) *Cleaner {
	return &Cleaner{
		cfg:       cfg,
		logger:    logger,
		checksum:  checksum.NewGenerator(),
		stopWords: StopWords(cfg.Transform.StopWords),
	}
}

// NewspaperUID derives the site uid from a scraper file name: everything
// before the first underscore of the base name.
func NewspaperUID(filename string) string {
	base := filepath.Base(filename)
	uid, _, _ := strings.Cut(base, "_")
	return uid
}

// CleanFile reads a scraper CSV, cleans it and writes clean_<name> to the
// transform output dir.
func (c *Cleaner) CleanFile(path string) (string, *Report, error) {
	c.logger.Info("Starting cleaning process", "file", path)

	raw, err := ReadRawFile(path, c.cfg.Transform.InputEncoding)
	if err != nil {
		return "", nil, err
	}

	rows, report := c.Clean(raw, NewspaperUID(path))

	outPath := filepath.Join(c.cfg.Transform.OutputDir, "clean_"+filepath.Base(path))
	if err := WriteCleanFile(outPath, rows); err != nil {
		return "", nil, err
	}

	c.logger.Info("Cleaning finished",
		"file", path,
		"output", outPath,
		"read", report.Read,
		"titles_filled", report.TitlesFilled,
		"duplicates", report.Duplicates,
		"missing_values", report.MissingValues,
		"written", report.Written,
	)
	return outPath, report, nil
}

// Clean applies the cleaning steps in order: site uid, host, missing titles,
// row uid, body whitespace, token counts, duplicate titles, missing values.
func (c *Cleaner) Clean(raw []RawArticle, newspaperUID string) ([]CleanArticle, *Report) {
	report := &Report{Read: len(raw)}
	rows := make([]CleanArticle, 0, len(raw))

	for _, r := range raw {
		row := CleanArticle{
			Body:         bodyReplacements.Replace(r.Body),
			Title:        r.Title,
			URL:          r.URL,
			NewspaperUID: newspaperUID,
			Host:         extractHost(r.URL),
		}
		if row.Title == "" {
			if title := titleFromURL(r.URL); title != "" {
				row.Title = title
				report.TitlesFilled++
			}
		}
		if row.URL != "" {
			row.UID = c.checksum.URLUID(row.URL)
		}
		row.TitleTokens = CountTokens(row.Title, c.stopWords)
		row.BodyTokens = CountTokens(row.Body, c.stopWords)
		rows = append(rows, row)
	}

	seen := make(map[string]struct{}, len(rows))
	deduped := rows[:0]
	for _, row := range rows {
		if _, dup := seen[row.Title]; dup {
			report.Duplicates++
			continue
		}
		seen[row.Title] = struct{}{}
		deduped = append(deduped, row)
	}

	complete := deduped[:0]
	for _, row := range deduped {
		if row.missingValue() {
			report.MissingValues++
			continue
		}
		complete = append(complete, row)
	}

	report.Written = len(complete)
	return complete, report
}

func (a CleanArticle) missingValue() bool {
	return a.UID == "" || a.Body == "" || a.Title == "" || a.URL == "" || a.NewspaperUID == "" || a.Host == ""
}

func extractHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// titleFromURL turns ".../la-nota-del-dia" into "la nota del dia".
func titleFromURL(rawURL string) string {
	segment := lastPathSegment.FindString(rawURL)
	if segment == "" {
		return ""
	}
	return strings.Join(strings.Split(segment, "-"), " ")
}
