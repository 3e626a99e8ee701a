package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// KV persists small opaque values by key. It backs the login limiter.
type KV interface {
	// Get returns the value under key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set inserts or replaces the value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// pgKV is the Postgres implementation of KV.
type pgKV struct {
	db db
}

// NewPgKV constructs a KV backed by the kv_store table.
func NewPgKV(db db) KV {
	return &pgKV{db: db}
}

func (k *pgKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := k.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = @key`, pgx.NamedArgs{"key": key}).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("repo.KV.Get: %w", err)
	}
	return value, true, nil
}

func (k *pgKV) Set(ctx context.Context, key string, value []byte) error {
	const q = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (@key, @value, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := k.db.Exec(ctx, q, pgx.NamedArgs{"key": key, "value": value}); err != nil {
		return fmt.Errorf("repo.KV.Set: %w", err)
	}
	return nil
}

func (k *pgKV) Delete(ctx context.Context, key string) error {
	if _, err := k.db.Exec(ctx, `DELETE FROM kv_store WHERE key = @key`, pgx.NamedArgs{"key": key}); err != nil {
		return fmt.Errorf("repo.KV.Delete: %w", err)
	}
	return nil
}

// sqliteKV is the SQLite implementation of KV.
type sqliteKV struct {
	db *sql.DB
}

// NewSQLiteKV constructs a KV backed by the kv_store table.
func NewSQLiteKV(db *sql.DB) KV {
	return &sqliteKV{db: db}
}

func (k *sqliteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := k.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("repo.KV.Get: %w", err)
	}
	return value, true, nil
}

func (k *sqliteKV) Set(ctx context.Context, key string, value []byte) error {
	const q = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := k.db.ExecContext(ctx, q, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("repo.KV.Set: %w", err)
	}
	return nil
}

func (k *sqliteKV) Delete(ctx context.Context, key string) error {
	if _, err := k.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("repo.KV.Delete: %w", err)
	}
	return nil
}
