package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
)

// maxUpdateRetries bounds optimistic retries for Update under write conflicts.
const maxUpdateRetries = 32

// multiRemoveBatchSize is the flush threshold for bulk deletes.
const multiRemoveBatchSize = 1000

// Options tune how the Badger database is opened.
type Options struct {
	// InMemory keeps everything in RAM. Path is ignored.
	InMemory bool
	// ReadOnly opens an existing directory without taking the write lock.
	ReadOnly bool
}

// Store wraps a Badger database instance and implements Backend.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	closed atomic.Bool
}

var _ Backend = (*Store)(nil)

// New opens (or creates) a Badger database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	return Open(path, logger, Options{})
}

// Open opens a Badger database with explicit options.
func Open(path string, logger *slog.Logger, o Options) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Disable Badger's internal logging
	opts.ReadOnly = o.ReadOnly
	if !o.InMemory && !o.ReadOnly {
		opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
		opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully",
			"path", path,
			"in_memory", o.InMemory,
			"read_only", o.ReadOnly,
		)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := s.ready(ctx); err != nil {
		return "", false, err
	}
	if key == "" {
		return "", false, ErrEmptyKey
	}

	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
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
		return ErrEmptyKey
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove deletes a key from the database.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if key == "" {
		return ErrEmptyKey
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// MultiGet reads every key inside a single read transaction.
func (s *Store) MultiGet(ctx context.Context, keys []string) ([]KeyValue, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	out := make([]KeyValue, 0, len(keys))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			kv := KeyValue{Key: key}
			item, err := txn.Get([]byte(key))
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
			case err != nil:
				return fmt.Errorf("get %s: %w", key, err)
			default:
				if err := item.Value(func(val []byte) error {
					kv.Value = string(val)
					return nil
				}); err != nil {
					return err
				}
				kv.Found = true
			}
			out = append(out, kv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MultiRemove deletes keys through a write batch.
func (s *Store) MultiRemove(ctx context.Context, keys []string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	bw := s.NewBatchWriter(multiRemoveBatchSize)
	for _, key := range keys {
		if err := bw.Delete(key); err != nil {
			bw.Cancel()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	// Flush leaves a fresh, empty batch behind.
	bw.Cancel()
	return nil
}

// AllKeys enumerates every key without fetching values.
func (s *Store) AllKeys(ctx context.Context) ([]string, error) {
	return s.KeysWithPrefix(ctx, "")
}

// KeysWithPrefix enumerates keys starting with prefix.
func (s *Store) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		if prefix != "" {
			opts.Prefix = []byte(prefix)
		}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Update runs fn inside a read-write transaction and retries on conflict.
func (s *Store) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if key == "" {
		return ErrEmptyKey
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := s.db.Update(func(txn *badger.Txn) error {
			var current string
			found := false

			item, err := txn.Get([]byte(key))
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
			case err != nil:
				return err
			default:
				if err := item.Value(func(val []byte) error {
					current = string(val)
					return nil
				}); err != nil {
					return err
				}
				found = true
			}

			next, err := fn(current, found)
			if err != nil {
				return err
			}
			return txn.Set([]byte(key), []byte(next))
		})

		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrSkipWrite):
			return nil
		case errors.Is(err, badger.ErrConflict):
			if s.logger != nil {
				s.logger.Debug("update conflict, retrying", "key", key, "attempt", attempt+1)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		default:
			return err
		}
	}

	return ErrUpdateConflict.WithCause(fmt.Errorf("key %s", key))
}
