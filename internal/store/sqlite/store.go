// Package sqlite provides a SQLite implementation of store.Backend: a single
// key/value table in a WAL-mode database file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pausememo/pausememo/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// maxBindVars keeps IN (...) lists under SQLite's host parameter limit.
const maxBindVars = 500

// Store provides SQLite-backed key/value persistence.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	closed atomic.Bool
}

var _ store.Backend = (*Store)(nil)

// Open creates a new SQLite store at the given path.
// Pragmas are set through the DSN so that every pooled connection gets them,
// and write transactions take the lock immediately to avoid upgrade deadlocks.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	// Run schema migration.
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Info("SQLite database opened successfully", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return store.ErrClosed
	}
	return nil
}

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := s.ready(ctx); err != nil {
		return "", false, err
	}
	if key == "" {
		return "", false, store.ErrEmptyKey
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores a value by key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if key == "" {
		return store.ErrEmptyKey
	}
	return upsert(ctx, s.db, key, value)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove deletes a key.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if key == "" {
		return store.ErrEmptyKey
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// MultiGet returns values for keys in request order.
func (s *Store) MultiGet(ctx context.Context, keys []string) ([]store.KeyValue, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	found := make(map[string]string, len(keys))
	for chunk := range slices.Chunk(keys, maxBindVars) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT key, value FROM kv WHERE key IN (`+placeholders(len(chunk))+`)`,
			toArgs(chunk)...,
		)
		if err != nil {
			return nil, fmt.Errorf("multi get: %w", err)
		}
		for rows.Next() {
			var k, v string
			if err := rows.Scan(&k, &v); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan kv: %w", err)
			}
			found[k] = v
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("multi get: %w", err)
		}
	}

	out := make([]store.KeyValue, len(keys))
	for i, k := range keys {
		v, ok := found[k]
		out[i] = store.KeyValue{Key: k, Value: v, Found: ok}
	}
	return out, nil
}

// MultiRemove deletes keys in a single transaction.
func (s *Store) MultiRemove(ctx context.Context, keys []string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for chunk := range slices.Chunk(keys, maxBindVars) {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM kv WHERE key IN (`+placeholders(len(chunk))+`)`,
				toArgs(chunk)...,
			); err != nil {
				return fmt.Errorf("multi remove: %w", err)
			}
		}
		return nil
	})
}

// AllKeys enumerates every key.
func (s *Store) AllKeys(ctx context.Context) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Update reads and rewrites key inside one immediate write transaction.
func (s *Store) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if key == "" {
		return store.ErrEmptyKey
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var current string
		found := true
		err := tx.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
		} else if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}

		next, err := fn(current, found)
		if err != nil {
			return err
		}
		return upsert(ctx, tx, key, next)
	})
	if errors.Is(err, store.ErrSkipWrite) {
		return nil
	}
	return err
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && s.logger != nil {
			s.logger.Warn("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(keys []string) []any {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return args
}
