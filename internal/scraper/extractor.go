package scraper

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a parsed HTML document queried with CSS selectors.
type Page struct {
	doc *goquery.Document
}

func NewPage(html []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Page{doc: doc}, nil
}

// Links applies every selector, concatenates the matches and returns the
// href of each match that carries one.
func (p *Page) Links(selectors []string) LinkSet {
	links := NewLinkSet()
	for _, selector := range selectors {
		p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if href, exists := sel.Attr("href"); exists {
				links.Add(href)
			}
		})
	}
	return links
}

// Title returns the text of the first match with surrounding whitespace
// trimmed, or "" when nothing matches.
func (p *Page) Title(selector string) string {
	return strings.TrimSpace(p.doc.Find(selector).First().Text())
}

// Body concatenates the text of every match in document order.
func (p *Page) Body(selector string) string {
	var sb strings.Builder
	p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		sb.WriteString(sel.Text())
	})
	return sb.String()
}

func ExtractLinks(html []byte, selectors []string) (LinkSet, error) {
	page, err := NewPage(html)
	if err != nil {
		return nil, err
	}
	return page.Links(selectors), nil
}

func ExtractTitle(html []byte, selector string) (string, error) {
	page, err := NewPage(html)
	if err != nil {
		return "", err
	}
	return page.Title(selector), nil
}

func ExtractBody(html []byte, selector string) (string, error) {
	page, err := NewPage(html)
	if err != nil {
		return "", err
	}
	return page.Body(selector), nil
}
