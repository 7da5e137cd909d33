package normalize

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"newspaper-etl/internal/config"
	"newspaper-etl/internal/observability"
)

func newCleaner(t *testing.T, mutate func(c *config.Config)) *Cleaner {
	t.Helper()
	cfg := &config.Config{Transform: config.TransformConfig{OutputDir: t.TempDir()}}
	cfg.SetDefaults()
	if mutate != nil {
		mutate(cfg)
	}
	return NewCleaner(cfg, observability.NewWriterLogger(io.Discard, "error"))
}

func TestCountTokens(t *testing.T) {
	stop := StopWords("spanish")

	tests := []struct {
		text     string
		expected int
	}{
		{"El gobierno anunció la obra", 3},
		{"Los 3 alcaldes, y la gente.", 2},
		{"COVID19 casos", 1},
		{"", 0},
		{"de la que el", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CountTokens(tt.text, stop), tt.text)
	}

	assert.Equal(t, 4, CountTokens("de la que el", StopWords("none")))
}

func TestNewspaperUID(t *testing.T) {
	assert.Equal(t, "lavozzarate", NewspaperUID("/tmp/raw/lavozzarate_16102026_articles.csv"))
	assert.Equal(t, "impactolocal", NewspaperUID("impactolocal_.csv"))
	assert.Equal(t, "plain.csv", NewspaperUID("plain.csv"))
}

func TestClean(t *testing.T) {
	c := newCleaner(t, nil)

	raw := []RawArticle{
		{Body: "Linea uno\nlinea dos\r", Title: "Obra pública", URL: "https://news.example/local/obra-publica"},
		{Body: "Sin título", Title: "", URL: "https://news.example/local/la-nota-del-dia"},
		{Body: "Repetida", Title: "Obra pública", URL: "https://news.example/local/otra"},
		{Body: "", Title: "Sin cuerpo", URL: "https://news.example/local/sin-cuerpo"},
		{Body: "Sin segmento", Title: "", URL: "https://news.example/"},
	}

	rows, report := c.Clean(raw, "news")

	require.Len(t, rows, 2)
	assert.Equal(t, 5, report.Read)
	assert.Equal(t, 1, report.TitlesFilled)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 2, report.MissingValues)
	assert.Equal(t, 2, report.Written)

	first := rows[0]
	assert.Equal(t, "Linea uno linea dos ", first.Body)
	assert.Equal(t, "news.example", first.Host)
	assert.Equal(t, "news", first.NewspaperUID)
	assert.Len(t, first.UID, 32)
	assert.Equal(t, 2, first.TitleTokens)

	assert.Equal(t, "la nota del dia", rows[1].Title)
}

func TestCleanFileRoundTrip(t *testing.T) {
	c := newCleaner(t, nil)

	in := filepath.Join(t.TempDir(), "lavozzarate_16102026_articles.csv")
	content := "body_csv,title_csv,url_csv\n" +
		"\"Cuerpo, con coma\",Titular,https://lavoz.example/a/1\n" +
		"Otro cuerpo,,https://lavoz.example/a/nota-sin-titulo\n"
	require.NoError(t, os.WriteFile(in, []byte(content), 0o644))

	out, report, err := c.CleanFile(in)
	require.NoError(t, err)
	assert.Equal(t, "clean_lavozzarate_16102026_articles.csv", filepath.Base(out))
	assert.Equal(t, 2, report.Written)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\ufeffuid,body_csv"))

	rows, err := ReadCleanFile(out)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "lavozzarate", rows[0].NewspaperUID)
	assert.Equal(t, "Cuerpo, con coma", rows[0].Body)
	assert.Equal(t, "nota sin titulo", rows[1].Title)
}

func TestReadRawFileLatin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("body_csv,title_csv,url_csv\nCañón,Año,http://x.example/a/1\n")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "x_.csv")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))

	rows, err := ReadRawFile(path, "iso-8859-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Cañón", rows[0].Body)
	assert.Equal(t, "Año", rows[0].Title)
}

func TestReadRawFileMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x_.csv")
	require.NoError(t, os.WriteFile(path, []byte("title_csv,url_csv\nA,http://x/1\n"), 0o644))

	_, err := ReadRawFile(path, "utf-8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "body_csv")
}
