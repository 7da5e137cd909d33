package scraper

import (
	"fmt"
	"regexp"
)

var (
	wellFormedLink = regexp.MustCompile(`^https?://.+/.+$`)
	rootPath       = regexp.MustCompile(`^/.+$`)
)

// ResolveLink turns a homepage href into an absolute article URL. The checks
// run in this order: absolute URL, root-relative path, bare relative path.
func ResolveLink(host, link string) string {
	if wellFormedLink.MatchString(link) {
		return link
	}
	if rootPath.MatchString(link) {
		return fmt.Sprintf("%s%s", host, link)
	}
	return fmt.Sprintf("%s/%s", host, link)
}
