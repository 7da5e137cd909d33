package scraper

import (
	"errors"
	"strings"
)

// ErrNoBody marks an article whose page loaded but yielded no body text.
var ErrNoBody = errors.New("no body")

// LinkSet is a deduplicated, unordered set of hrefs found on a homepage.
type LinkSet map[string]struct{}

func NewLinkSet(links ...string) LinkSet {
	set := make(LinkSet, len(links))
	for _, l := range links {
		set[l] = struct{}{}
	}
	return set
}

func (s LinkSet) Add(link string) { s[link] = struct{}{} }

func (s LinkSet) Contains(link string) bool {
	_, ok := s[link]
	return ok
}

type LinkDiscoveryResult struct {
	SiteUID string
	Links   LinkSet
	Err     error
}

type ArticleRecord struct {
	SiteUID string
	URL     string
	Title   string
	Body    string
	Err     error
}

// Valid reports whether the record may be handed to the result sink. A body
// made only of whitespace counts as empty.
func (r ArticleRecord) Valid() bool {
	return r.Err == nil && strings.TrimSpace(r.Body) != ""
}

// ArticleCSVHeader lists the exported columns of an ArticleRecord, in the
// order CSVRow writes them. The transform stage reads these names.
var ArticleCSVHeader = []string{"body_csv", "title_csv", "url_csv"}

func (r ArticleRecord) CSVRow() []string {
	return []string{r.Body, r.Title, r.URL}
}

// FetchBatch groups successful articles by originating site uid.
type FetchBatch map[string][]ArticleRecord
