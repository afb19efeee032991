package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/shelf"
	"github.com/sagarc03/shelf/database/internal/schema"
)

// Migrate creates the journal tables and indexes if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables shelf.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := createUploadsTable(ctx, pool, tables.Uploads); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Uploads, err)
	}

	return nil
}

// DropTables removes the journal tables.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables shelf.Tables) error {
	quotedTable := pgx.Identifier{tables.Uploads}.Sanitize()

	if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", quotedTable)); err != nil {
		return fmt.Errorf("migrate down %s: %w", tables.Uploads, err)
	}

	return nil
}

func createUploadsTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexHistory := pgx.Identifier{schema.HistoryIndex(tableName)}.Sanitize()
	indexPath := pgx.Identifier{schema.PathIndex(tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			path TEXT NOT NULL,
			filename TEXT NOT NULL,
			size_bytes BIGINT NOT NULL,
			etag TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			reason TEXT NOT NULL,
			remote_addr TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (created_at DESC, id DESC);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (path text_pattern_ops);
	`,
		quotedTable,
		indexHistory, quotedTable,
		indexPath, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create uploads table: %w", err)
	}
	return nil
}
