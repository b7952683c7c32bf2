package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
	"github.com/pausememo/pausememo/internal/store"
)

// SettingsRepository persists the single settings object.
type SettingsRepository struct {
	backend store.Backend
	key     string
	logger  *slog.Logger
}

// NewSettingsRepository creates the repository over backend.
func NewSettingsRepository(backend store.Backend, keys store.Keyspace, logger *slog.Logger) (*SettingsRepository, error) {
	if backend == nil {
		return nil, errors.NotInitialized("settings repository backend")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SettingsRepository{
		backend: backend,
		key:     keys.Settings(),
		logger:  logger,
	}, nil
}

// Load returns the stored settings merged over the defaults. Fields missing
// from the stored object keep their default; a corrupt object yields defaults.
func (r *SettingsRepository) Load(ctx context.Context) (domain.Settings, error) {
	s := domain.DefaultSettings()

	raw, found, err := r.backend.Get(ctx, r.key)
	if err != nil {
		return s, err
	}
	if !found {
		return s, nil
	}

	// Decoding into a defaults-populated value gives the merge for free.
	merged := s
	if err := json.Unmarshal([]byte(raw), &merged); err != nil {
		r.logger.Warn("stored settings are malformed, using defaults", "error", err)
		return s, nil
	}
	return merged, nil
}

// Save overwrites the stored settings.
func (r *SettingsRepository) Save(ctx context.Context, s domain.Settings) error {
	return store.SaveObject(ctx, r.backend, r.key, s)
}

// NotificationsEnabled reports the global notification switch.
func (r *SettingsRepository) NotificationsEnabled(ctx context.Context) (bool, error) {
	s, err := r.Load(ctx)
	if err != nil {
		return false, err
	}
	return s.NotificationsEnabled, nil
}
