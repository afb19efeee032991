// Package sqlite implements the upload journal using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/shelf"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type repo struct {
	db        *sql.DB
	tableName string
}

// NewRepo returns a journal over an already migrated database.
func NewRepo(db *sql.DB, tables shelf.Tables) (shelf.Journal, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &repo{db: db, tableName: tables.Uploads}, nil
}

func (r *repo) Record(ctx context.Context, rec shelf.UploadRecord) (shelf.UploadRecord, error) {
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, path, filename, size_bytes, etag, success, reason, remote_addr, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, quoteIdentifier(r.tableName))

	_, err := r.db.ExecContext(ctx, query,
		rec.ID.String(), rec.Path, rec.Filename, rec.Size, rec.Etag,
		boolToInt(rec.Success), rec.Reason, rec.RemoteAddr, rec.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return shelf.UploadRecord{}, fmt.Errorf("record: %w", err)
	}

	return rec, nil
}

// List returns records newest first.
func (r *repo) List(ctx context.Context, q shelf.ListQuery) (shelf.ListResult, error) {
	q = q.Normalize()

	cursor, err := shelf.DecodeCursor(q.Cursor)
	if err != nil {
		return shelf.ListResult{}, fmt.Errorf("list: %w", err)
	}

	// SQLite LIKE ignores ASCII case, so the prefix is compared exactly.
	var query string
	var args []any

	if q.Cursor == "" {
		query = fmt.Sprintf(`
			SELECT id, path, filename, size_bytes, etag, success, reason, remote_addr, created_at
			FROM %s
			WHERE substr(path, 1, length(?1)) = ?1
			ORDER BY created_at DESC, id DESC
			LIMIT ?2
		`, quoteIdentifier(r.tableName))
		args = []any{q.PathPrefix, q.Limit + 1}
	} else {
		query = fmt.Sprintf(`
			SELECT id, path, filename, size_bytes, etag, success, reason, remote_addr, created_at
			FROM %s
			WHERE substr(path, 1, length(?1)) = ?1 AND (created_at, id) < (?2, ?3)
			ORDER BY created_at DESC, id DESC
			LIMIT ?4
		`, quoteIdentifier(r.tableName))
		args = []any{q.PathPrefix, cursor.CreatedAt.UTC().Format(timeLayout), cursor.ID, q.Limit + 1}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return shelf.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]shelf.UploadRecord, 0, q.Limit)
	for rows.Next() {
		var rec shelf.UploadRecord
		var idStr, createdAt string
		var success int

		if scanErr := rows.Scan(&idStr, &rec.Path, &rec.Filename, &rec.Size, &rec.Etag,
			&success, &rec.Reason, &rec.RemoteAddr, &createdAt); scanErr != nil {
			return shelf.ListResult{}, fmt.Errorf("list: scan: %w", scanErr)
		}

		var parseErr error
		rec.ID, parseErr = uuid.Parse(idStr)
		if parseErr != nil {
			return shelf.ListResult{}, fmt.Errorf("list: parse uuid: %w", parseErr)
		}

		rec.CreatedAt, parseErr = time.Parse(time.RFC3339Nano, createdAt)
		if parseErr != nil {
			return shelf.ListResult{}, fmt.Errorf("list: parse created_at: %w", parseErr)
		}

		rec.Success = success != 0
		items = append(items, rec)
	}

	if err := rows.Err(); err != nil {
		return shelf.ListResult{}, fmt.Errorf("list: rows: %w", err)
	}

	var nextCursor string
	if len(items) > q.Limit {
		// Cursor points to the last item of the current page
		lastItem := items[q.Limit-1]
		nextCursor = shelf.EncodeCursor(lastItem.CreatedAt, lastItem.ID.String())
		items = items[:q.Limit]
	}

	return shelf.ListResult{Items: items, NextCursor: nextCursor}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
