package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pausememo/pausememo/internal/repository"
	"github.com/pausememo/pausememo/internal/sse"
)

// DataService handles bulk operations over the user's stored data.
type DataService struct {
	repos     *repository.Set
	reminders Reminders
	events    Emitter
	logger    *slog.Logger
}

// NewDataService creates a new data service.
func NewDataService(repos *repository.Set, reminders Reminders, events Emitter, logger *slog.Logger) *DataService {
	if events == nil {
		events = NoopEmitter{}
	}
	return &DataService{
		repos:     repos,
		reminders: reminders,
		events:    events,
		logger:    orDiscard(logger),
	}
}

// DeleteAllHistory cancels every pending reminder and removes all
// interruptions, resume events and notification bindings. Custom trigger
// tags go too when includeTags is set. Settings are kept.
//
// A reminder that fails to cancel does not stop the purge; its binding is
// dropped with the rest.
func (s *DataService) DeleteAllHistory(ctx context.Context, includeTags bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.reminders.CancelAllResumeNotifications(ctx); err != nil {
		s.logger.Warn("failed to cancel reminders during purge", "error", err)
	}
	if err := s.repos.Bindings.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete notification bindings: %w", err)
	}
	if err := s.repos.Resumes.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete resume events: %w", err)
	}
	if err := s.repos.Interruptions.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete interruptions: %w", err)
	}
	if includeTags {
		if err := s.repos.TriggerTags.DeleteAll(ctx); err != nil {
			return fmt.Errorf("delete trigger tags: %w", err)
		}
	}

	s.events.Emit(sse.NewHistoryClearedEvent(includeTags))
	s.logger.Info("history deleted", "include_tags", includeTags)
	return nil
}
