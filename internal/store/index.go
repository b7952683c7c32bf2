package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
)

// IndexManager stores entities of type T as individual JSON blobs keyed by id,
// plus one or more ordered id lists (indexes) that record insertion order.
//
// The unscoped index lives at indexKey. A scoped (secondary) index, such as
// the per-interruption resume history, lives at indexKey:scope.
//
// Malformed stored text is treated as absence: an empty index or a nil entity.
type IndexManager[T any, ID ~string] struct {
	backend      Backend
	indexKey     string
	entityPrefix string
	logger       *slog.Logger
}

// NewIndexManager creates an IndexManager over backend.
func NewIndexManager[T any, ID ~string](backend Backend, indexKey, entityPrefix string, logger *slog.Logger) *IndexManager[T, ID] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IndexManager[T, ID]{
		backend:      backend,
		indexKey:     indexKey,
		entityPrefix: entityPrefix,
		logger:       logger,
	}
}

// IndexKey returns the storage key for the index with the given scope.
// An empty scope addresses the unscoped index.
func (m *IndexManager[T, ID]) IndexKey(scope string) string {
	if scope == "" {
		return m.indexKey
	}
	return m.indexKey + separator + scope
}

// EntityKey returns the storage key for the entity with the given id.
func (m *IndexManager[T, ID]) EntityKey(id ID) string {
	return m.entityPrefix + separator + string(id)
}

// LoadIndex returns the ordered ids of the index. Empty when absent or corrupt.
func (m *IndexManager[T, ID]) LoadIndex(ctx context.Context, scope string) ([]ID, error) {
	return LoadList[ID](ctx, m.backend, m.IndexKey(scope))
}

// SaveIndex overwrites the index.
func (m *IndexManager[T, ID]) SaveIndex(ctx context.Context, ids []ID, scope string) error {
	return SaveList(ctx, m.backend, m.IndexKey(scope), ids)
}

// AddToIndex appends id unless it is already present. The read-modify-write
// runs as a single backend Update, so concurrent appends are never lost.
func (m *IndexManager[T, ID]) AddToIndex(ctx context.Context, id ID, scope string) error {
	return m.backend.Update(ctx, m.IndexKey(scope), func(current string, found bool) (string, error) {
		ids := []ID{}
		if found {
			ids = DecodeList[ID](current)
		}
		if slices.Contains(ids, id) {
			return "", ErrSkipWrite
		}
		return Encode(append(ids, id))
	})
}

// LoadEntity returns the entity stored under id, or nil when absent or corrupt.
func (m *IndexManager[T, ID]) LoadEntity(ctx context.Context, id ID) (*T, error) {
	key := m.EntityKey(id)
	raw, found, err := m.backend.Get(ctx, key)
	if err != nil || !found {
		return nil, err
	}
	entity := DecodeObject[T](raw)
	if entity == nil {
		m.logger.Warn("discarding malformed entity", "key", key)
	}
	return entity, nil
}

// LoadEntities loads ids in order with a single MultiGet, dropping missing
// and malformed entities.
func (m *IndexManager[T, ID]) LoadEntities(ctx context.Context, ids []ID) ([]*T, error) {
	if len(ids) == 0 {
		return []*T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = m.EntityKey(id)
	}

	kvs, err := m.backend.MultiGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(kvs))
	for _, kv := range kvs {
		if !kv.Found {
			continue
		}
		entity := DecodeObject[T](kv.Value)
		if entity == nil {
			m.logger.Warn("discarding malformed entity", "key", kv.Key)
			continue
		}
		out = append(out, entity)
	}
	return out, nil
}

// SaveEntity writes entity under id.
func (m *IndexManager[T, ID]) SaveEntity(ctx context.Context, id ID, entity *T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	return m.backend.Set(ctx, m.EntityKey(id), string(data))
}

// DeleteEntity removes the entity stored under id.
func (m *IndexManager[T, ID]) DeleteEntity(ctx context.Context, id ID) error {
	return m.backend.Remove(ctx, m.EntityKey(id))
}

// Backend exposes the underlying backend for repository-specific bulk work.
func (m *IndexManager[T, ID]) Backend() Backend {
	return m.backend
}
