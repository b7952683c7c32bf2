// Package repository implements PauseMemo's persistence on top of a
// store.Backend: interruption and resume events kept in ordered indexes,
// plus the notification bindings, custom trigger tags and settings maps.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
	"github.com/pausememo/pausememo/internal/store"
)

// InterruptionRepository stores interruption events in append order.
//
// The index order doubles as RecordedAt order: events are appended as they
// are recorded and Update refuses to move RecordedAt past a neighbour.
// ListByPeriod relies on that to stop scanning early.
type InterruptionRepository struct {
	ix     *store.IndexManager[domain.InterruptionEvent, domain.InterruptionID]
	logger *slog.Logger
}

// NewInterruptionRepository creates the repository over backend.
func NewInterruptionRepository(backend store.Backend, keys store.Keyspace, logger *slog.Logger) (*InterruptionRepository, error) {
	if backend == nil {
		return nil, errors.NotInitialized("interruption repository backend")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &InterruptionRepository{
		ix: store.NewIndexManager[domain.InterruptionEvent, domain.InterruptionID](
			backend, keys.InterruptionIndex(), keys.InterruptionEventPrefix(), logger),
		logger: logger,
	}, nil
}

// Save persists the event and then appends its id to the index. Writing the
// entity first means a crash in between leaves an unreferenced blob, never an
// index entry pointing at nothing.
func (r *InterruptionRepository) Save(ctx context.Context, ev *domain.InterruptionEvent) error {
	if ev == nil || ev.ID == "" {
		return errors.InvalidArgument("interruption event must have an id")
	}
	if err := r.ix.SaveEntity(ctx, ev.ID, ev); err != nil {
		return fmt.Errorf("save interruption %s: %w", ev.ID, err)
	}
	if err := r.ix.AddToIndex(ctx, ev.ID, ""); err != nil {
		return fmt.Errorf("index interruption %s: %w", ev.ID, err)
	}
	r.logger.Debug("interruption saved", "interruption_id", ev.ID)
	return nil
}

// Update overwrites a stored event without touching the index.
// The event must already be indexed, and its RecordedAt must stay between
// those of its index neighbours.
func (r *InterruptionRepository) Update(ctx context.Context, ev *domain.InterruptionEvent) error {
	if ev == nil || ev.ID == "" {
		return errors.InvalidArgument("interruption event must have an id")
	}

	ids, err := r.ix.LoadIndex(ctx, "")
	if err != nil {
		return err
	}
	pos := slices.Index(ids, ev.ID)
	if pos < 0 {
		return errors.NotFoundf("interruption %s not found", ev.ID)
	}
	if err := r.checkAppendOrder(ctx, ids, pos, ev); err != nil {
		return err
	}

	if err := r.ix.SaveEntity(ctx, ev.ID, ev); err != nil {
		return fmt.Errorf("update interruption %s: %w", ev.ID, err)
	}
	return nil
}

func (r *InterruptionRepository) checkAppendOrder(ctx context.Context, ids []domain.InterruptionID, pos int, ev *domain.InterruptionEvent) error {
	if pos > 0 {
		prev, err := r.ix.LoadEntity(ctx, ids[pos-1])
		if err != nil {
			return err
		}
		if prev != nil && ev.RecordedAt.Before(prev.RecordedAt) {
			return errors.Conflictf("interruption %s: recordedAt would precede %s", ev.ID, prev.ID)
		}
	}
	if pos < len(ids)-1 {
		next, err := r.ix.LoadEntity(ctx, ids[pos+1])
		if err != nil {
			return err
		}
		if next != nil && ev.RecordedAt.After(next.RecordedAt) {
			return errors.Conflictf("interruption %s: recordedAt would follow %s", ev.ID, next.ID)
		}
	}
	return nil
}

// FindLatest returns the most recently appended event, or nil.
func (r *InterruptionRepository) FindLatest(ctx context.Context) (*domain.InterruptionEvent, error) {
	ids, err := r.ix.LoadIndex(ctx, "")
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return r.ix.LoadEntity(ctx, ids[len(ids)-1])
}

// FindByID returns the event with id, or nil.
func (r *InterruptionRepository) FindByID(ctx context.Context, id domain.InterruptionID) (*domain.InterruptionEvent, error) {
	return r.ix.LoadEntity(ctx, id)
}

// ListRecent returns up to limit events, newest first. Missing or corrupt
// entities are skipped.
func (r *InterruptionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.InterruptionEvent, error) {
	if limit <= 0 {
		return []*domain.InterruptionEvent{}, nil
	}

	ids, err := r.ix.LoadIndex(ctx, "")
	if err != nil {
		return nil, err
	}

	start := max(len(ids)-limit, 0)
	recent := slices.Clone(ids[start:])
	slices.Reverse(recent)

	return r.ix.LoadEntities(ctx, recent)
}

// scanBatch is how many entities ListByPeriod loads per backend round trip.
const scanBatch = 32

// ListByPeriod returns events whose RecordedAt falls within the query,
// newest first. It walks the index backwards, skipping events after To and
// stopping at the first event before From.
func (r *InterruptionRepository) ListByPeriod(ctx context.Context, q domain.HistoryQuery) ([]*domain.InterruptionEvent, error) {
	out := []*domain.InterruptionEvent{}
	if q.Empty() {
		return out, nil
	}
	limit := q.EffectiveLimit()

	ids, err := r.ix.LoadIndex(ctx, "")
	if err != nil {
		return nil, err
	}

	for end := len(ids); end > 0; end -= scanBatch {
		start := max(end-scanBatch, 0)
		batch := slices.Clone(ids[start:end])
		slices.Reverse(batch)

		events, err := r.ix.LoadEntities(ctx, batch)
		if err != nil {
			return nil, err
		}

		for _, ev := range events {
			if q.To != nil && ev.RecordedAt.After(*q.To) {
				continue
			}
			if q.From != nil && ev.RecordedAt.Before(*q.From) {
				return out, nil
			}
			out = append(out, ev)
			if len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// DeleteAll removes every indexed event and resets the index.
func (r *InterruptionRepository) DeleteAll(ctx context.Context) error {
	ids, err := r.ix.LoadIndex(ctx, "")
	if err != nil {
		return err
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.ix.EntityKey(id)
	}
	if err := r.ix.Backend().MultiRemove(ctx, keys); err != nil {
		return fmt.Errorf("delete interruptions: %w", err)
	}
	if err := r.ix.SaveIndex(ctx, []domain.InterruptionID{}, ""); err != nil {
		return fmt.Errorf("reset interruption index: %w", err)
	}

	r.logger.Info("interruptions deleted", "count", len(ids))
	return nil
}
