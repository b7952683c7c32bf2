package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
	"github.com/pausememo/pausememo/internal/store"
)

// ResumeRepository stores resume events with one append-ordered index per
// interruption.
type ResumeRepository struct {
	ix     *store.IndexManager[domain.ResumeEvent, domain.ResumeID]
	keys   store.Keyspace
	logger *slog.Logger
}

// NewResumeRepository creates the repository over backend.
func NewResumeRepository(backend store.Backend, keys store.Keyspace, logger *slog.Logger) (*ResumeRepository, error) {
	if backend == nil {
		return nil, errors.NotInitialized("resume repository backend")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ResumeRepository{
		ix: store.NewIndexManager[domain.ResumeEvent, domain.ResumeID](
			backend, keys.ResumeIndex(), keys.ResumeEventPrefix(), logger),
		keys:   keys,
		logger: logger,
	}, nil
}

// Save persists the event and appends it to its interruption's index.
func (r *ResumeRepository) Save(ctx context.Context, ev *domain.ResumeEvent) error {
	if ev == nil || ev.ID == "" || ev.InterruptionID == "" {
		return errors.InvalidArgument("resume event must have an id and an interruption id")
	}
	if err := r.ix.SaveEntity(ctx, ev.ID, ev); err != nil {
		return fmt.Errorf("save resume %s: %w", ev.ID, err)
	}
	if err := r.ix.AddToIndex(ctx, ev.ID, string(ev.InterruptionID)); err != nil {
		return fmt.Errorf("index resume %s: %w", ev.ID, err)
	}
	r.logger.Debug("resume saved",
		"resume_id", ev.ID,
		"interruption_id", ev.InterruptionID,
		"status", ev.Status,
	)
	return nil
}

// ListByInterruptionID returns the interruption's resume events in append order.
func (r *ResumeRepository) ListByInterruptionID(ctx context.Context, id domain.InterruptionID) ([]*domain.ResumeEvent, error) {
	ids, err := r.ix.LoadIndex(ctx, string(id))
	if err != nil {
		return nil, err
	}
	return r.ix.LoadEntities(ctx, ids)
}

// FindLatestByInterruptionID returns the last appended resume event for the
// interruption, or nil. This is the interruption's current status. Append
// order wins over ResumedAt: never sort resume events by timestamp to find it.
func (r *ResumeRepository) FindLatestByInterruptionID(ctx context.Context, id domain.InterruptionID) (*domain.ResumeEvent, error) {
	ids, err := r.ix.LoadIndex(ctx, string(id))
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return r.ix.LoadEntity(ctx, ids[len(ids)-1])
}

// DeleteAll removes every resume event and every per-interruption index.
// The per-interruption indexes have no master list, so the backend's keys
// are enumerated directly.
func (r *ResumeRepository) DeleteAll(ctx context.Context) error {
	all, err := r.ix.Backend().AllKeys(ctx)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}

	eventPrefix := r.keys.ResumeEventPrefix() + ":"
	indexPrefix := r.keys.ResumeIndex() + ":"

	var doomed []string
	for _, k := range all {
		if strings.HasPrefix(k, eventPrefix) || strings.HasPrefix(k, indexPrefix) {
			doomed = append(doomed, k)
		}
	}
	if err := r.ix.Backend().MultiRemove(ctx, doomed); err != nil {
		return fmt.Errorf("delete resumes: %w", err)
	}

	r.logger.Info("resume history deleted", "keys", len(doomed))
	return nil
}
