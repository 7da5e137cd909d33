package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
news_sites:
  lavozzarate:
    url: https://lavozdezarate.example
    queries:
      homepage_article_links: [".nota a", ".titulo a"]
      article_title: "h1"
      article_body: ".cuerpo p"
  impactolocal:
    url: https://impactolocal.example
    queries:
      homepage_article_links: ["h2 a"]
      article_title: ".entry-title"
      article_body: ".entry-content"
concurrency:
  max_in_flight: 8
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "newsetl/1.0", cfg.HTTP.UserAgent)
	assert.Equal(t, 30000, cfg.HTTP.TotalTimeoutMS)
	assert.Equal(t, FilenameStyleArticles, cfg.Output.FilenameStyle)
	assert.Equal(t, "oneshot", cfg.Scheduler.Mode)
	assert.Equal(t, 8, cfg.Concurrency.MaxInFlight)
	assert.Equal(t, []string{"impactolocal", "lavozzarate"}, cfg.SiteUIDs())
}

func TestSiteLookup(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	site, err := cfg.Site("lavozzarate")
	require.NoError(t, err)
	assert.Equal(t, "lavozzarate", site.UID)
	assert.Equal(t, []string{".nota a", ".titulo a"}, site.Queries.HomepageArticleLinks)

	_, err = cfg.Site("missing")
	assert.True(t, errors.Is(err, ErrUnknownSite))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			NewsSites: map[string]SiteConfig{
				"site": {
					URL: "https://site.example",
					Queries: QueryConfig{
						HomepageArticleLinks: []string{"a"},
						ArticleTitle:         "h1",
						ArticleBody:          "p",
					},
				},
			},
		}
		cfg.SetDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no sites", func(c *Config) { c.NewsSites = nil }, "news_sites"},
		{"missing body query", func(c *Config) {
			s := c.NewsSites["site"]
			s.Queries.ArticleBody = ""
			c.NewsSites["site"] = s
		}, "article_body"},
		{"bad driver", func(c *Config) { c.Storage.Driver = "oracle"; c.Storage.DSN = "x" }, "storage.driver"},
		{"driver without dsn", func(c *Config) { c.Storage.Driver = "sqlite3" }, "storage.dsn"},
		{"cron without expr", func(c *Config) { c.Scheduler.Mode = "cron" }, "cron_expr"},
		{"negative cap", func(c *Config) { c.Concurrency.MaxInFlight = -1 }, "max_in_flight"},
		{"bad encoding", func(c *Config) { c.Transform.InputEncoding = "latin2" }, "input_encoding"},
		{"rod without chrome", func(c *Config) { c.Rod.Enabled = true }, "chrome_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyEnvOverridesStorage(t *testing.T) {
	t.Setenv(EnvStorageDriver, "sqlite3")
	t.Setenv(EnvStorageDSN, "file:news.db")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", cfg.Storage.Driver)
	assert.Equal(t, "file:news.db", cfg.Storage.DSN)
}

func TestLoadDotEnvMissingFileIsNotAnError(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestNeedsBrowser(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.False(t, cfg.NeedsBrowser())

	site := cfg.NewsSites["impactolocal"]
	site.Render = true
	cfg.NewsSites["impactolocal"] = site
	assert.False(t, cfg.NeedsBrowser(), "rod disabled")

	cfg.Rod.Enabled = true
	assert.True(t, cfg.NeedsBrowser())
}
