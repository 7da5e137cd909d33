package sqlstore

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newspaper-etl/internal/observability"
	"newspaper-etl/internal/storage"
)

func openMemory(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open("sqlite3", ":memory:", time.Second, observability.NewWriterLogger(io.Discard, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestUpsertArticleInsertThenUpdate(t *testing.T) {
	repo := openMemory(t)
	ctx := context.Background()

	article := &storage.Article{
		UID:          "uid-1",
		Body:         "Cuerpo",
		Host:         "news.example",
		Title:        "Titular",
		NewspaperUID: "news",
		BodyTokens:   1,
		TitleTokens:  1,
		URL:          "https://news.example/a/1",
		CheckSum:     "c1",
	}

	isNew, err := repo.UpsertArticle(ctx, article)
	require.NoError(t, err)
	assert.True(t, isNew)

	article.Title = "Titular corregido"
	article.CheckSum = "c2"
	isNew, err = repo.UpsertArticle(ctx, article)
	require.NoError(t, err)
	assert.False(t, isNew)

	var stored storage.Article
	require.NoError(t, repo.db.GetContext(ctx, &stored, `SELECT * FROM articles WHERE url_csv = ?`, article.URL))
	assert.Equal(t, "Titular corregido", stored.Title)
	assert.Equal(t, "c2", stored.CheckSum)

	count, err := repo.CountByNewspaper(ctx, "news")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	repo := openMemory(t)
	assert.NoError(t, repo.EnsureSchema(context.Background()))
}
