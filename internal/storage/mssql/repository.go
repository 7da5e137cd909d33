package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"newspaper-etl/internal/observability"
	"newspaper-etl/internal/storage"
)

var _ storage.Repository = (*Repository)(nil)

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewRepositoryFromDB(db, commandTimeout, logger), nil
}

// NewRepositoryFromDB wraps an open connection pool.
func NewRepositoryFromDB(db *sql.DB, commandTimeout time.Duration, logger *observability.Logger) *Repository {
	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query := `
		IF OBJECT_ID(N'articles', N'U') IS NULL
		CREATE TABLE articles (
			[id]                NVARCHAR(32)  NOT NULL PRIMARY KEY,
			[body_csv]          NVARCHAR(MAX) NULL,
			[host]              NVARCHAR(255) NULL,
			[title_csv]         NVARCHAR(MAX) NULL,
			[newspapper_uid]    NVARCHAR(100) NULL,
			[n_token_body_csv]  INT           NULL,
			[n_token_title_csv] INT           NULL,
			[url_csv]           NVARCHAR(900) NOT NULL UNIQUE,
			[checksum]          NVARCHAR(64)  NULL
		);
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create articles table: %w", err)
	}
	return nil
}

// UpsertArticle saves or updates an article keyed by URL.
func (r *Repository) UpsertArticle(ctx context.Context, article *storage.Article) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query := `
		MERGE INTO articles WITH (HOLDLOCK) AS target
		USING (SELECT @URL AS url_csv) AS source
		ON target.[url_csv] = source.url_csv
		WHEN MATCHED THEN
			UPDATE SET
				[body_csv] = @Body,
				[host] = @Host,
				[title_csv] = @Title,
				[newspapper_uid] = @NewspaperUID,
				[n_token_body_csv] = @BodyTokens,
				[n_token_title_csv] = @TitleTokens,
				[checksum] = @CheckSum
		WHEN NOT MATCHED THEN
			INSERT ([id], [body_csv], [host], [title_csv], [newspapper_uid], [n_token_body_csv], [n_token_title_csv], [url_csv], [checksum])
			VALUES (@UID, @Body, @Host, @Title, @NewspaperUID, @BodyTokens, @TitleTokens, @URL, @CheckSum)
		OUTPUT $action;
	`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return false, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	var action string
	err = stmt.QueryRowContext(ctx,
		sql.Named("UID", article.UID),
		sql.Named("Body", article.Body),
		sql.Named("Host", article.Host),
		sql.Named("Title", article.Title),
		sql.Named("NewspaperUID", article.NewspaperUID),
		sql.Named("BodyTokens", article.BodyTokens),
		sql.Named("TitleTokens", article.TitleTokens),
		sql.Named("URL", article.URL),
		sql.Named("CheckSum", article.CheckSum),
	).Scan(&action)
	if err != nil {
		return false, fmt.Errorf("failed to execute upsert: %w", err)
	}

	return action == "INSERT", nil
}

func (r *Repository) CountByNewspaper(ctx context.Context, newspaperUID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query := `SELECT COUNT(*) FROM articles WHERE newspapper_uid = @NewspaperUID`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	var count int
	err = stmt.QueryRowContext(ctx, sql.Named("NewspaperUID", newspaperUID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}

	return count, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
