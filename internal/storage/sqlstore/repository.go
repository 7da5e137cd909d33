// Package sqlstore implements storage.Repository on top of sqlx for the
// postgres and sqlite3 drivers, which share the ON CONFLICT upsert syntax.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"newspaper-etl/internal/observability"
	"newspaper-etl/internal/storage"
)

var _ storage.Repository = (*Repository)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id TEXT PRIMARY KEY,
	body_csv TEXT,
	host TEXT,
	title_csv TEXT,
	newspapper_uid TEXT,
	n_token_body_csv INTEGER,
	n_token_title_csv INTEGER,
	url_csv TEXT NOT NULL UNIQUE,
	checksum TEXT
)`

const upsertArticle = `
INSERT INTO articles (id, body_csv, host, title_csv, newspapper_uid, n_token_body_csv, n_token_title_csv, url_csv, checksum)
VALUES (:id, :body_csv, :host, :title_csv, :newspapper_uid, :n_token_body_csv, :n_token_title_csv, :url_csv, :checksum)
ON CONFLICT (url_csv) DO UPDATE SET
	body_csv = excluded.body_csv,
	host = excluded.host,
	title_csv = excluded.title_csv,
	newspapper_uid = excluded.newspapper_uid,
	n_token_body_csv = excluded.n_token_body_csv,
	n_token_title_csv = excluded.n_token_title_csv,
	checksum = excluded.checksum`

type Repository struct {
	db             *sqlx.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

// Open connects with driver "postgres" or "sqlite3".
func Open(driver, dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite3" {
		// one writer; also keeps :memory: databases on a single connection
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db, commandTimeout: commandTimeout, logger: logger}, nil
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create articles table: %w", err)
	}
	return nil
}

func (r *Repository) UpsertArticle(ctx context.Context, article *storage.Article) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.GetContext(ctx, &count, tx.Rebind(`SELECT COUNT(*) FROM articles WHERE url_csv = ?`), article.URL); err != nil {
		return false, fmt.Errorf("failed to query database: %w", err)
	}

	if _, err := tx.NamedExecContext(ctx, upsertArticle, article); err != nil {
		return false, fmt.Errorf("failed to execute upsert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit upsert: %w", err)
	}
	return count == 0, nil
}

func (r *Repository) CountByNewspaper(ctx context.Context, newspaperUID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(*) FROM articles WHERE newspapper_uid = ?`), newspaperUID); err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return count, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
