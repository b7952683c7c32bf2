package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/repository"
	"github.com/pausememo/pausememo/internal/sse"
	"github.com/pausememo/pausememo/internal/validation"
)

// SettingsService manages the user's preferences.
type SettingsService struct {
	repos     *repository.Set
	reminders Reminders
	events    Emitter
	validator *validation.Validator
	logger    *slog.Logger
}

// NewSettingsService creates a new settings service.
func NewSettingsService(repos *repository.Set, reminders Reminders, events Emitter, logger *slog.Logger) *SettingsService {
	if events == nil {
		events = NoopEmitter{}
	}
	return &SettingsService{
		repos:     repos,
		reminders: reminders,
		events:    events,
		validator: validation.New(),
		logger:    orDiscard(logger),
	}
}

// Get retrieves the current settings.
func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	return s.repos.Settings.Load(ctx)
}

// Update applies patch to the stored settings.
// Turning notifications off cancels every pending reminder first.
func (s *SettingsService) Update(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	if err := ctx.Err(); err != nil {
		return domain.Settings{}, err
	}
	if err := s.validator.Validate(patch); err != nil {
		return domain.Settings{}, err
	}

	current, err := s.repos.Settings.Load(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("get current settings: %w", err)
	}

	if patch.NotificationsEnabled != nil && current.NotificationsEnabled && !*patch.NotificationsEnabled {
		s.logger.Info("cancelling pending reminders before disabling notifications")
		if err := s.reminders.CancelAllResumeNotifications(ctx); err != nil {
			return domain.Settings{}, fmt.Errorf("cancel reminders: %w", err)
		}
	}

	updated := patch.Apply(current)
	if err := s.repos.Settings.Save(ctx, updated); err != nil {
		return domain.Settings{}, fmt.Errorf("update settings: %w", err)
	}

	s.events.Emit(sse.NewSettingsUpdatedEvent(updated))
	s.logger.Info("settings updated",
		"notifications_enabled", updated.NotificationsEnabled,
		"theme", updated.Theme,
		"week_start", updated.WeekStart,
	)
	return updated, nil
}
