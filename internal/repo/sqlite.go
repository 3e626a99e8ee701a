package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers "sqlite" driver for database/sql

	"github.com/pkordes/driftboat/internal/domain"
)

// OpenSQLite opens a SQLite database at path. ":memory:" opens a private
// in-memory database limited to one connection so every query sees the
// same schema.
func OpenSQLite(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("repo.OpenSQLite: path is required")
	}

	dsn := ":memory:"
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: open: %w", err)
	}
	if path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: ping: %w", err)
	}
	return sqlDB, nil
}

// sqliteStore is the SQLite implementation of Store. Bodies are JSON text
// queried with the built-in JSON functions; timestamps are epoch milliseconds.
type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore constructs a Store backed by a migrated SQLite database.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db, now: time.Now}
}

const sqliteColumns = `id, data, created_at, updated_at`

// Get retrieves one document by collection and id.
func (s *sqliteStore) Get(ctx context.Context, collection, id string) (Document, error) {
	const q = `SELECT ` + sqliteColumns + ` FROM documents WHERE collection = ? AND id = ?`

	doc, err := scanSQLiteDocument(s.db.QueryRowContext(ctx, q, collection, id))
	if err != nil {
		return Document{}, fmt.Errorf("repo.Store.Get: %w", err)
	}
	return doc, nil
}

// List returns the documents of a collection matching every constraint.
func (s *sqliteStore) List(ctx context.Context, collection string, constraints ...Constraint) ([]Document, error) {
	cq, err := buildQuery(constraints)
	if err != nil {
		return nil, fmt.Errorf("repo.Store.List: %w", err)
	}

	args := []any{collection}
	var sb strings.Builder
	sb.WriteString(`SELECT ` + sqliteColumns + ` FROM documents WHERE collection = ?`)

	for _, w := range cq.wheres {
		if col := columnFor(w.field); col != "" {
			val, err := columnValue(w.field, w.value)
			if err != nil {
				return nil, fmt.Errorf("repo.Store.List: %w", err)
			}
			if t, ok := val.(time.Time); ok {
				val = t.UnixMilli()
			}
			fmt.Fprintf(&sb, " AND %s %s ?", col, sqlOps[w.op])
			args = append(args, val)
			continue
		}
		val, err := sqliteValue(w.value)
		if err != nil {
			return nil, fmt.Errorf("repo.Store.List: %s: %w", w.field, err)
		}
		fmt.Fprintf(&sb, " AND json_extract(data, ?) %s ?", sqlOps[w.op])
		args = append(args, jsonPath(w.field), val)
	}

	sb.WriteString(" ORDER BY ")
	for _, o := range cq.orders {
		dir := "ASC"
		if o.dir == Desc {
			dir = "DESC"
		}
		if col := columnFor(o.field); col != "" {
			fmt.Fprintf(&sb, "%s %s, ", col, dir)
			continue
		}
		fmt.Fprintf(&sb, "json_extract(data, ?) %s, ", dir)
		args = append(args, jsonPath(o.field))
	}
	sb.WriteString("created_at ASC, rowid ASC")

	if cq.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", cq.limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("repo.Store.List: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		d, err := scanSQLiteDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.Store.List: scan: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.Store.List: rows: %w", err)
	}
	return docs, nil
}

// Create inserts a new document and returns its generated id.
func (s *sqliteStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	body, err := encodeData(data)
	if err != nil {
		return "", fmt.Errorf("repo.Store.Create: %w", err)
	}

	const q = `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	id := uuid.NewString()
	now := s.now().UnixMilli()
	if _, err := s.db.ExecContext(ctx, q, collection, id, string(body), now, now); err != nil {
		return "", fmt.Errorf("repo.Store.Create: %w", err)
	}
	return id, nil
}

// Update shallow-merges data into an existing document. Each top-level key
// is replaced whole, matching the Postgres jsonb || merge.
func (s *sqliteStore) Update(ctx context.Context, collection, id string, data map[string]any) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repo.Store.Update: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("repo.Store.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("repo.Store.Update: %w", err)
	}

	body := map[string]json.RawMessage{}
	if err = json.Unmarshal([]byte(raw), &body); err != nil {
		return fmt.Errorf("repo.Store.Update: decode: %w", err)
	}
	patch, err := encodeData(data)
	if err != nil {
		return fmt.Errorf("repo.Store.Update: %w", err)
	}
	if err = json.Unmarshal(patch, &body); err != nil {
		return fmt.Errorf("repo.Store.Update: merge: %w", err)
	}
	merged, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("repo.Store.Update: %w", err)
	}

	const q = `UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`
	if _, err = tx.ExecContext(ctx, q, string(merged), s.now().UnixMilli(), collection, id); err != nil {
		return fmt.Errorf("repo.Store.Update: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("repo.Store.Update: commit: %w", err)
	}
	return nil
}

// Delete removes a document by collection and id.
func (s *sqliteStore) Delete(ctx context.Context, collection, id string) error {
	const q = `DELETE FROM documents WHERE collection = ? AND id = ?`

	res, err := s.db.ExecContext(ctx, q, collection, id)
	if err != nil {
		return fmt.Errorf("repo.Store.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo.Store.Delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("repo.Store.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanSQLiteDocument(s scanner) (Document, error) {
	var (
		id               string
		raw              string
		created, updated int64
	)
	if err := s.Scan(&id, &raw, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, domain.ErrNotFound
		}
		return Document{}, err
	}
	return decodeDocument(id, []byte(raw), time.UnixMilli(created), time.UnixMilli(updated))
}

// jsonPath quotes field as a SQLite JSON path. field is already validated.
func jsonPath(field string) string {
	return `$."` + field + `"`
}

// sqliteValue converts a Where value to what json_extract yields for the
// same JSON: text, a number, or 1/0 for booleans.
func sqliteValue(v any) (any, error) {
	switch t := v.(type) {
	case domain.Timestamp:
		return t.Time().UTC().Format(time.RFC3339Nano), nil
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}
