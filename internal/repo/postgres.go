package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/driftboat/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgStore is the Postgres implementation of Store. Bodies live in a jsonb column.
type pgStore struct {
	db db
}

// NewPgStore constructs a Store backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPgStore(db db) Store {
	return &pgStore{db: db}
}

const pgColumns = `id::text, data, created_at, updated_at`

// Get retrieves one document by collection and id.
func (s *pgStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Document{}, fmt.Errorf("repo.Store.Get: %w", domain.ErrNotFound)
	}

	const q = `SELECT ` + pgColumns + `
		FROM documents
		WHERE collection = @collection AND id = @id`

	doc, err := scanDocument(s.db.QueryRow(ctx, q, pgx.NamedArgs{"collection": collection, "id": id}))
	if err != nil {
		return Document{}, fmt.Errorf("repo.Store.Get: %w", err)
	}
	return doc, nil
}

// List returns the documents of a collection matching every constraint.
func (s *pgStore) List(ctx context.Context, collection string, constraints ...Constraint) ([]Document, error) {
	cq, err := buildQuery(constraints)
	if err != nil {
		return nil, fmt.Errorf("repo.Store.List: %w", err)
	}

	args := pgx.NamedArgs{"collection": collection}
	var sb strings.Builder
	sb.WriteString(`SELECT ` + pgColumns + ` FROM documents WHERE collection = @collection`)

	for i, w := range cq.wheres {
		v := fmt.Sprintf("v%d", i)
		if col := columnFor(w.field); col != "" {
			val, err := columnValue(w.field, w.value)
			if err != nil {
				return nil, fmt.Errorf("repo.Store.List: %w", err)
			}
			if col == "id" {
				col = "id::text"
			}
			fmt.Fprintf(&sb, " AND %s %s @%s", col, sqlOps[w.op], v)
			args[v] = val
			continue
		}
		raw, err := json.Marshal(w.value)
		if err != nil {
			return nil, fmt.Errorf("repo.Store.List: encode %s: %w", w.field, err)
		}
		f := fmt.Sprintf("f%d", i)
		// jsonb comparison orders numbers numerically and strings lexically.
		fmt.Fprintf(&sb, " AND data->@%s::text %s @%s::jsonb", f, sqlOps[w.op], v)
		args[f] = w.field
		args[v] = string(raw)
	}

	sb.WriteString(" ORDER BY ")
	for i, o := range cq.orders {
		dir := "ASC"
		if o.dir == Desc {
			dir = "DESC"
		}
		if col := columnFor(o.field); col != "" {
			fmt.Fprintf(&sb, "%s %s, ", col, dir)
			continue
		}
		f := fmt.Sprintf("o%d", i)
		fmt.Fprintf(&sb, "data->@%s::text %s, ", f, dir)
		args[f] = o.field
	}
	sb.WriteString("created_at ASC, id ASC")

	if cq.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", cq.limit)
	}

	rows, err := s.db.Query(ctx, sb.String(), args)
	if err != nil {
		return nil, fmt.Errorf("repo.Store.List: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
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
func (s *pgStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	body, err := encodeData(data)
	if err != nil {
		return "", fmt.Errorf("repo.Store.Create: %w", err)
	}

	const q = `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (@collection, @id, @data::jsonb, clock_timestamp(), clock_timestamp())`

	id := uuid.New()
	args := pgx.NamedArgs{
		"collection": collection,
		"id":         id,
		"data":       string(body),
	}
	if _, err := s.db.Exec(ctx, q, args); err != nil {
		return "", fmt.Errorf("repo.Store.Create: %w", err)
	}
	return id.String(), nil
}

// Update shallow-merges data into an existing document.
func (s *pgStore) Update(ctx context.Context, collection, id string, data map[string]any) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("repo.Store.Update: %w", domain.ErrNotFound)
	}
	patch, err := encodeData(data)
	if err != nil {
		return fmt.Errorf("repo.Store.Update: %w", err)
	}

	const q = `
		UPDATE documents
		SET data       = data || @patch::jsonb,
		    updated_at = clock_timestamp()
		WHERE collection = @collection AND id = @id`

	tag, err := s.db.Exec(ctx, q, pgx.NamedArgs{"collection": collection, "id": id, "patch": string(patch)})
	if err != nil {
		return fmt.Errorf("repo.Store.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.Store.Update: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a document by collection and id.
func (s *pgStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("repo.Store.Delete: %w", domain.ErrNotFound)
	}

	const q = `DELETE FROM documents WHERE collection = @collection AND id = @id`

	tag, err := s.db.Exec(ctx, q, pgx.NamedArgs{"collection": collection, "id": id})
	if err != nil {
		return fmt.Errorf("repo.Store.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.Store.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows, allowing
// the scan helpers to be reused for single-row and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (Document, error) {
	var (
		id               string
		raw              []byte
		created, updated time.Time
	)
	if err := s.Scan(&id, &raw, &created, &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, domain.ErrNotFound
		}
		return Document{}, err
	}
	return decodeDocument(id, raw, created, updated)
}

// columnValue converts a Where value for a reserved field to its column type.
func columnValue(field string, v any) (any, error) {
	if field == FieldID {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be compared to a string, got %T", field, v)
		}
		return s, nil
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case domain.Timestamp:
		return t.Time(), nil
	case string:
		ts, err := domain.ParseTimestamp(t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		return ts.Time(), nil
	}
	return nil, fmt.Errorf("%s must be compared to a time, got %T", field, v)
}
