package normalize

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

const utf8BOM = "\ufeff"

// CleanCSVHeader is the column order of a cleaned CSV.
var CleanCSVHeader = []string{
	"uid", "body_csv", "title_csv", "url_csv", "newspapper_uid", "host", "n_token_title_csv", "n_token_body_csv",
}

func (a CleanArticle) CSVRow() []string {
	return []string{
		a.UID, a.Body, a.Title, a.URL, a.NewspaperUID, a.Host,
		strconv.Itoa(a.TitleTokens), strconv.Itoa(a.BodyTokens),
	}
}

// ReadRawFile reads a scraper CSV. encoding is "utf-8" or "iso-8859-1".
func ReadRawFile(path, encoding string) ([]RawArticle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	if encoding == "iso-8859-1" {
		r = charmap.ISO8859_1.NewDecoder().Reader(file)
	}

	records, err := readCSV(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", path)
	}

	cols, err := columnIndex(records[0], "body_csv", "title_csv", "url_csv")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	articles := make([]RawArticle, 0, len(records)-1)
	for _, rec := range records[1:] {
		articles = append(articles, RawArticle{
			Body:  at(rec, cols["body_csv"]),
			Title: at(rec, cols["title_csv"]),
			URL:   at(rec, cols["url_csv"]),
		})
	}
	return articles, nil
}

// ReadCleanFile reads a cleaned CSV written by WriteCleanFile.
func ReadCleanFile(path string) ([]CleanArticle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	records, err := readCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", path)
	}

	cols, err := columnIndex(records[0], CleanCSVHeader...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	articles := make([]CleanArticle, 0, len(records)-1)
	for i, rec := range records[1:] {
		titleTokens, err := strconv.Atoi(at(rec, cols["n_token_title_csv"]))
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: bad n_token_title_csv: %w", path, i+1, err)
		}
		bodyTokens, err := strconv.Atoi(at(rec, cols["n_token_body_csv"]))
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: bad n_token_body_csv: %w", path, i+1, err)
		}
		articles = append(articles, CleanArticle{
			UID:          at(rec, cols["uid"]),
			Body:         at(rec, cols["body_csv"]),
			Title:        at(rec, cols["title_csv"]),
			URL:          at(rec, cols["url_csv"]),
			NewspaperUID: at(rec, cols["newspapper_uid"]),
			Host:         at(rec, cols["host"]),
			TitleTokens:  titleTokens,
			BodyTokens:   bodyTokens,
		})
	}
	return articles, nil
}

// WriteCleanFile writes rows as UTF-8 with a byte order mark.
func WriteCleanFile(path string, rows []CleanArticle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	bw := bufio.NewWriter(file)
	if _, err := bw.WriteString(utf8BOM); err != nil {
		_ = file.Close()
		return err
	}
	w := csv.NewWriter(bw)
	if err := w.Write(CleanCSVHeader); err != nil {
		_ = file.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(row.CSVRow()); err != nil {
			_ = file.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	return records, nil
}

func columnIndex(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return idx, nil
}

func at(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
