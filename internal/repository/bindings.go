package repository

import (
	"context"
	"log/slog"
	"slices"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
	"github.com/pausememo/pausememo/internal/store"
)

// NotificationBindingRepository maps each interruption to at most one live
// scheduled notification. The whole map lives under a single key.
type NotificationBindingRepository struct {
	backend store.Backend
	key     string
	logger  *slog.Logger
}

// NewNotificationBindingRepository creates the repository over backend.
func NewNotificationBindingRepository(backend store.Backend, keys store.Keyspace, logger *slog.Logger) (*NotificationBindingRepository, error) {
	if backend == nil {
		return nil, errors.NotInitialized("notification binding repository backend")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NotificationBindingRepository{
		backend: backend,
		key:     keys.NotificationBindings(),
		logger:  logger,
	}, nil
}

// Save binds notificationID to the interruption, replacing any previous binding.
func (r *NotificationBindingRepository) Save(ctx context.Context, interruptionID domain.InterruptionID, notificationID domain.NotificationID) error {
	return store.UpdateMap(ctx, r.backend, r.key, func(m map[string]domain.NotificationID) error {
		m[string(interruptionID)] = notificationID
		return nil
	})
}

// Find returns the notification bound to the interruption.
func (r *NotificationBindingRepository) Find(ctx context.Context, interruptionID domain.InterruptionID) (domain.NotificationID, bool, error) {
	m, err := store.LoadMap[domain.NotificationID](ctx, r.backend, r.key)
	if err != nil {
		return "", false, err
	}
	nid, ok := m[string(interruptionID)]
	return nid, ok, nil
}

// Delete removes the interruption's binding. Missing bindings are ignored.
func (r *NotificationBindingRepository) Delete(ctx context.Context, interruptionID domain.InterruptionID) error {
	return store.UpdateMap(ctx, r.backend, r.key, func(m map[string]domain.NotificationID) error {
		if _, ok := m[string(interruptionID)]; !ok {
			return store.ErrSkipWrite
		}
		delete(m, string(interruptionID))
		return nil
	})
}

// DeleteAll replaces the map with an empty one.
func (r *NotificationBindingRepository) DeleteAll(ctx context.Context) error {
	return store.SaveMap(ctx, r.backend, r.key, map[string]domain.NotificationID{})
}

// ListAll returns every bound notification id, sorted.
func (r *NotificationBindingRepository) ListAll(ctx context.Context) ([]domain.NotificationID, error) {
	m, err := store.LoadMap[domain.NotificationID](ctx, r.backend, r.key)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.NotificationID, 0, len(m))
	for _, nid := range m {
		ids = append(ids, nid)
	}
	slices.Sort(ids)
	return ids, nil
}

// Bindings returns a copy of the whole interruption → notification map.
func (r *NotificationBindingRepository) Bindings(ctx context.Context) (map[domain.InterruptionID]domain.NotificationID, error) {
	m, err := store.LoadMap[domain.NotificationID](ctx, r.backend, r.key)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.InterruptionID]domain.NotificationID, len(m))
	for k, v := range m {
		out[domain.InterruptionID(k)] = v
	}
	return out, nil
}
