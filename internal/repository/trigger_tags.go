package repository

import (
	"cmp"
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
	"github.com/pausememo/pausememo/internal/store"
)

// CustomTriggerTagRepository tracks user-defined trigger tags and how often
// they are used. The whole set lives in one map keyed by tag id.
type CustomTriggerTagRepository struct {
	backend store.Backend
	key     string
	logger  *slog.Logger
}

// NewCustomTriggerTagRepository creates the repository over backend.
func NewCustomTriggerTagRepository(backend store.Backend, keys store.Keyspace, logger *slog.Logger) (*CustomTriggerTagRepository, error) {
	if backend == nil {
		return nil, errors.NotInitialized("custom trigger tag repository backend")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CustomTriggerTagRepository{
		backend: backend,
		key:     keys.CustomTriggerTags(),
		logger:  logger,
	}, nil
}

// UpsertUsage records one use of each tag at usedAt: unknown tags are
// created with a count of one, known tags get their count incremented and
// LastUsedAt bumped. Preset tags are not tracked.
func (r *CustomTriggerTagRepository) UpsertUsage(ctx context.Context, tags []domain.TriggerTag, usedAt time.Time) error {
	usedAt = usedAt.UTC().Round(0)

	custom := make([]domain.TriggerTag, 0, len(tags))
	for _, t := range tags {
		if t.ID == "" || domain.IsPresetTriggerTag(t.ID) {
			continue
		}
		custom = append(custom, t)
	}
	if len(custom) == 0 {
		return nil
	}

	return store.UpdateMap(ctx, r.backend, r.key, func(m map[string]domain.CustomTriggerTag) error {
		seen := make(map[domain.TriggerTagID]bool, len(custom))
		for _, t := range custom {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true

			existing, ok := m[string(t.ID)]
			if !ok {
				m[string(t.ID)] = domain.CustomTriggerTag{
					ID:         t.ID,
					Label:      t.Label,
					CreatedAt:  usedAt,
					LastUsedAt: usedAt,
					UsageCount: 1,
				}
				continue
			}
			existing.UsageCount++
			if usedAt.After(existing.LastUsedAt) {
				existing.LastUsedAt = usedAt
			}
			m[string(t.ID)] = existing
		}
		return nil
	})
}

// ListTopUsed returns up to limit tags, most used first. Ties go to the more
// recently used tag, then to id order. A non-positive limit yields nothing.
func (r *CustomTriggerTagRepository) ListTopUsed(ctx context.Context, limit int) ([]domain.CustomTriggerTag, error) {
	if limit <= 0 {
		return []domain.CustomTriggerTag{}, nil
	}

	m, err := store.LoadMap[domain.CustomTriggerTag](ctx, r.backend, r.key)
	if err != nil {
		return nil, err
	}

	tags := slices.Collect(maps.Values(m))
	slices.SortFunc(tags, func(a, b domain.CustomTriggerTag) int {
		if c := cmp.Compare(b.UsageCount, a.UsageCount); c != 0 {
			return c
		}
		if c := b.LastUsedAt.Compare(a.LastUsedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}

// FindByID returns the custom tag with id, or nil.
func (r *CustomTriggerTagRepository) FindByID(ctx context.Context, id domain.TriggerTagID) (*domain.CustomTriggerTag, error) {
	m, err := store.LoadMap[domain.CustomTriggerTag](ctx, r.backend, r.key)
	if err != nil {
		return nil, err
	}
	tag, ok := m[string(id)]
	if !ok {
		return nil, nil
	}
	return &tag, nil
}

// DeleteAll removes every custom tag.
func (r *CustomTriggerTagRepository) DeleteAll(ctx context.Context) error {
	return store.SaveMap(ctx, r.backend, r.key, map[string]domain.CustomTriggerTag{})
}
