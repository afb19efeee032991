package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/shelf"
	"github.com/sagarc03/shelf/database/internal/schema"
)

var uploadsColumns = []schema.Column{
	{Name: "id", Type: "uuid", NotNull: true},
	{Name: "path", Type: "text", NotNull: true},
	{Name: "filename", Type: "text", NotNull: true},
	{Name: "size_bytes", Type: "bigint", NotNull: true},
	{Name: "etag", Type: "text", NotNull: true},
	{Name: "success", Type: "boolean", NotNull: true},
	{Name: "reason", Type: "text", NotNull: true},
	{Name: "remote_addr", Type: "text", NotNull: true},
	{Name: "created_at", Type: "timestamp with time zone", NotNull: true},
}

// ValidateSchema checks that the journal table in the current schema has the
// expected columns and the indexes created by Migrate.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables shelf.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable = 'NO'
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
	`, tables.Uploads)
	if err != nil {
		return fmt.Errorf("validate schema: query columns: %w", err)
	}
	columns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (schema.Column, error) {
		var c schema.Column
		err := row.Scan(&c.Name, &c.Type, &c.NotNull)
		return c, err
	})
	if err != nil {
		return fmt.Errorf("validate schema: columns: %w", err)
	}

	rows, err = pool.Query(ctx, `
		SELECT indexname
		FROM pg_indexes
		WHERE schemaname = current_schema() AND tablename = $1
	`, tables.Uploads)
	if err != nil {
		return fmt.Errorf("validate schema: query indexes: %w", err)
	}
	indexes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("validate schema: indexes: %w", err)
	}

	wantIndexes := []string{schema.HistoryIndex(tables.Uploads), schema.PathIndex(tables.Uploads)}
	if err := schema.Check(tables.Uploads, uploadsColumns, columns, wantIndexes, indexes); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	return nil
}
