package config

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownSite is returned when a site uid has no entry under news_sites.
var ErrUnknownSite = errors.New("unknown news site")

// SiteConfig describes one news site: its base host and the CSS selectors used
// to pull article links, titles and bodies out of its pages.
type SiteConfig struct {
	UID     string      `yaml:"-"`
	URL     string      `yaml:"url"`
	Render  bool        `yaml:"render"`
	Queries QueryConfig `yaml:"queries"`
}

type QueryConfig struct {
	HomepageArticleLinks []string `yaml:"homepage_article_links"`
	ArticleTitle         string   `yaml:"article_title"`
	ArticleBody          string   `yaml:"article_body"`
}

func (s SiteConfig) validate(uid string) error {
	if s.URL == "" {
		return fmt.Errorf("news_sites.%s.url is required", uid)
	}
	if len(s.Queries.HomepageArticleLinks) == 0 {
		return fmt.Errorf("news_sites.%s.queries.homepage_article_links is required", uid)
	}
	if s.Queries.ArticleTitle == "" {
		return fmt.Errorf("news_sites.%s.queries.article_title is required", uid)
	}
	if s.Queries.ArticleBody == "" {
		return fmt.Errorf("news_sites.%s.queries.article_body is required", uid)
	}
	return nil
}

// Site returns the configuration of the given site with its UID filled in.
func (c *Config) Site(uid string) (SiteConfig, error) {
	site, ok := c.NewsSites[uid]
	if !ok {
		return SiteConfig{}, fmt.Errorf("%w: %s", ErrUnknownSite, uid)
	}
	site.UID = uid
	return site, nil
}

// SiteUIDs returns every configured site uid in lexical order.
func (c *Config) SiteUIDs() []string {
	uids := make([]string, 0, len(c.NewsSites))
	for uid := range c.NewsSites {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}
