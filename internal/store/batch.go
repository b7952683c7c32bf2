package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// BatchWriter groups raw writes into Badger write batches. Batches are not
// transactional: a failed flush can leave earlier batches applied.
type BatchWriter struct {
	store     *Store
	batch     *badger.WriteBatch
	maxSize   int
	count     int
	autoFlush bool
}

// NewBatchWriter creates a batch writer that flushes every maxSize operations.
// A non-positive maxSize only flushes on Flush.
func (s *Store) NewBatchWriter(maxSize int) *BatchWriter {
	return &BatchWriter{
		store:     s,
		batch:     s.db.NewWriteBatch(),
		maxSize:   maxSize,
		autoFlush: maxSize > 0,
	}
}

// Set queues a write of value under key.
func (b *BatchWriter) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := b.batch.Set([]byte(key), []byte(value)); err != nil {
		return fmt.Errorf("batch set %s: %w", key, err)
	}
	return b.added()
}

// Delete queues removal of key.
func (b *BatchWriter) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := b.batch.Delete([]byte(key)); err != nil {
		return fmt.Errorf("batch delete %s: %w", key, err)
	}
	return b.added()
}

func (b *BatchWriter) added() error {
	b.count++
	if b.autoFlush && b.count >= b.maxSize {
		if err := b.Flush(); err != nil {
			return fmt.Errorf("auto flush: %w", err)
		}
	}
	return nil
}

// Flush commits all pending writes and starts a fresh batch.
func (b *BatchWriter) Flush() error {
	if b.count == 0 {
		return nil
	}

	if err := b.batch.Flush(); err != nil {
		return fmt.Errorf("flush batch: %w", err)
	}

	if b.store.logger != nil {
		b.store.logger.LogAttrs(context.Background(), slog.LevelDebug, "batch flushed",
			slog.Int("count", b.count),
		)
	}

	b.count = 0
	b.batch = b.store.db.NewWriteBatch()
	return nil
}

// Cancel discards all pending writes in the batch.
func (b *BatchWriter) Cancel() {
	b.batch.Cancel()
	b.count = 0
}

// Count returns the number of operations in the current batch.
func (b *BatchWriter) Count() int {
	return b.count
}
