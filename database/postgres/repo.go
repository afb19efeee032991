// Package postgres implements the upload journal using PostgreSQL
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/shelf"
)

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables shelf.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: tables.Uploads}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) table() string {
	return pgx.Identifier{r.tableName}.Sanitize()
}

func (r *Repo) Record(ctx context.Context, rec shelf.UploadRecord) (shelf.UploadRecord, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (path, filename, size_bytes, etag, success, reason, remote_addr)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.table())

	err := r.pool.QueryRow(ctx, query,
		rec.Path, rec.Filename, rec.Size, rec.Etag, rec.Success, rec.Reason, rec.RemoteAddr,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return shelf.UploadRecord{}, fmt.Errorf("record: %w", err)
	}

	return rec, nil
}

// List returns records newest first.
func (r *Repo) List(ctx context.Context, q shelf.ListQuery) (shelf.ListResult, error) {
	q = q.Normalize()

	cursor, err := shelf.DecodeCursor(q.Cursor)
	if err != nil {
		return shelf.ListResult{}, fmt.Errorf("list: %w", err)
	}

	escapedPrefix := shelf.EscapeLikePattern(q.PathPrefix)

	var query string
	var args []any

	if q.Cursor == "" {
		query = fmt.Sprintf(`
			SELECT id, path, filename, size_bytes, etag, success, reason, remote_addr, created_at
			FROM %s
			WHERE path LIKE $1 || '%%'
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`, r.table())
		args = []any{escapedPrefix, q.Limit + 1}
	} else {
		cursorID, parseErr := uuid.Parse(cursor.ID)
		if parseErr != nil {
			return shelf.ListResult{}, fmt.Errorf("list: decode cursor: invalid id: %w", parseErr)
		}

		query = fmt.Sprintf(`
			SELECT id, path, filename, size_bytes, etag, success, reason, remote_addr, created_at
			FROM %s
			WHERE path LIKE $1 || '%%' AND (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC
			LIMIT $4
		`, r.table())
		args = []any{escapedPrefix, cursor.CreatedAt, cursorID, q.Limit + 1}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return shelf.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := make([]shelf.UploadRecord, 0, q.Limit)
	for rows.Next() {
		var rec shelf.UploadRecord
		if err := rows.Scan(&rec.ID, &rec.Path, &rec.Filename, &rec.Size, &rec.Etag,
			&rec.Success, &rec.Reason, &rec.RemoteAddr, &rec.CreatedAt); err != nil {
			return shelf.ListResult{}, fmt.Errorf("list: scan: %w", err)
		}
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
