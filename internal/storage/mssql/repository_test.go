package mssql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newspaper-etl/internal/observability"
	"newspaper-etl/internal/storage"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepositoryFromDB(db, time.Second, observability.NewWriterLogger(io.Discard, "error")), mock
}

func sampleArticle() *storage.Article {
	return &storage.Article{
		UID:          "6f1ed002ab5595859014ebf0951522d9",
		Body:         "Cuerpo",
		Host:         "news.example",
		Title:        "Titular",
		NewspaperUID: "news",
		BodyTokens:   1,
		TitleTokens:  1,
		URL:          "https://news.example/a/1",
		CheckSum:     "abc",
	}
}

func TestUpsertArticleInsert(t *testing.T) {
	repo, mock := newMockRepo(t)

	args := make([]driver.Value, 0, 9)
	for i := 0; i < 7; i++ {
		args = append(args, sqlmock.AnyArg())
	}
	args = append(args, sql.Named("URL", "https://news.example/a/1"), sqlmock.AnyArg())

	mock.ExpectPrepare("MERGE INTO articles").
		ExpectQuery().
		WithArgs(args...).
		WillReturnRows(sqlmock.NewRows([]string{"$action"}).AddRow("INSERT"))

	isNew, err := repo.UpsertArticle(context.Background(), sampleArticle())
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertArticleUpdate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectPrepare("MERGE INTO articles").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"$action"}).AddRow("UPDATE"))

	isNew, err := repo.UpsertArticle(context.Background(), sampleArticle())
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertArticleError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectPrepare("MERGE INTO articles").
		ExpectQuery().
		WillReturnError(sql.ErrConnDone)

	_, err := repo.UpsertArticle(context.Background(), sampleArticle())
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestCountByNewspaperAndSchema(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("CREATE TABLE articles").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("SELECT COUNT\\(\\*\\) FROM articles WHERE newspapper_uid").
		ExpectQuery().
		WithArgs(sql.Named("NewspaperUID", "news")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	count, err := repo.CountByNewspaper(context.Background(), "news")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
