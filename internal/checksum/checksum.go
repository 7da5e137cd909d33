package checksum

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// URLUID returns the row uid for an article: hex MD5 of its URL.
func (g *Generator) URLUID(url string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(url)))
}

// GenerateContentHash returns SHA256(url|title|body) in hex. The load stage
// stores it to tell whether an upsert changed an existing row.
func (g *Generator) GenerateContentHash(url, title, body string) string {
	content := fmt.Sprintf("%s|%s|%s", url, title, body)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
}
