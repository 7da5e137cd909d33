package storage

import (
	"context"
	"errors"
)

// ErrStorageNotConfigured is returned when a load is requested without a
// storage driver in the config.
var ErrStorageNotConfigured = errors.New("storage is not configured")

// Article is one cleaned article row keyed by its URL hash.
type Article struct {
	UID          string `db:"id"`
	Body         string `db:"body_csv"`
	Host         string `db:"host"`
	Title        string `db:"title_csv"`
	NewspaperUID string `db:"newspapper_uid"`
	BodyTokens   int    `db:"n_token_body_csv"`
	TitleTokens  int    `db:"n_token_title_csv"`
	URL          string `db:"url_csv"`
	CheckSum     string `db:"checksum"`
}

// Repository stores articles with a unique constraint on URL.
type Repository interface {
	// EnsureSchema creates the articles table when it does not exist
	EnsureSchema(ctx context.Context) error

	// UpsertArticle inserts or updates by URL, isNew reports an insert
	UpsertArticle(ctx context.Context, article *Article) (isNew bool, err error)

	// CountByNewspaper counts stored articles of one site
	CountByNewspaper(ctx context.Context, newspaperUID string) (int, error)

	Close() error
}
