package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/shelf"
	"github.com/sagarc03/shelf/database/internal/schema"
)

var uploadsColumns = []schema.Column{
	{Name: "id", Type: "text", NotNull: true},
	{Name: "path", Type: "text", NotNull: true},
	{Name: "filename", Type: "text", NotNull: true},
	{Name: "size_bytes", Type: "integer", NotNull: true},
	{Name: "etag", Type: "text", NotNull: true},
	{Name: "success", Type: "integer", NotNull: true},
	{Name: "reason", Type: "text", NotNull: true},
	{Name: "remote_addr", Type: "text", NotNull: true},
	{Name: "created_at", Type: "text", NotNull: true},
}

// ValidateSchema checks that the journal table has the expected columns and
// the indexes created by Migrate.
func ValidateSchema(ctx context.Context, db *sql.DB, tables shelf.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	columns, err := readColumns(ctx, db, tables.Uploads)
	if err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	indexes, err := readIndexes(ctx, db, tables.Uploads)
	if err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	wantIndexes := []string{schema.HistoryIndex(tables.Uploads), schema.PathIndex(tables.Uploads)}
	if err := schema.Check(tables.Uploads, uploadsColumns, columns, wantIndexes, indexes); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	return nil
}

// readColumns returns nothing for a table that does not exist.
func readColumns(ctx context.Context, db *sql.DB, table string) ([]schema.Column, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []schema.Column
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, dataType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, schema.Column{Name: name, Type: dataType, NotNull: notNull != 0})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	return columns, nil
}

func readIndexes(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ?`, table)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan index: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("indexes: %w", err)
	}
	return names, nil
}
