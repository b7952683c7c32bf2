package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
	"github.com/pausememo/pausememo/internal/repository"
)

// HistoryService reads interruptions together with their current status.
type HistoryService struct {
	repos        *repository.Set
	logger       *slog.Logger
	defaultLimit int
	now          func() time.Time
}

// NewHistoryService creates a new history service. defaultLimit caps queries
// that do not set their own.
func NewHistoryService(repos *repository.Set, defaultLimit int, logger *slog.Logger) *HistoryService {
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultHistoryLimit
	}
	return &HistoryService{
		repos:        repos,
		logger:       orDiscard(logger),
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
}

// List returns interruptions recorded within q, newest first.
func (s *HistoryService) List(ctx context.Context, q domain.HistoryQuery) ([]domain.HistoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Limit <= 0 {
		q.Limit = s.defaultLimit
	}

	events, err := s.repos.Interruptions.ListByPeriod(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list interruptions: %w", err)
	}
	return s.withStatus(ctx, events)
}

// Get returns one interruption with its status.
func (s *HistoryService) Get(ctx context.Context, id domain.InterruptionID) (*domain.HistoryItem, error) {
	ev, err := s.repos.Interruptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, errors.NotFoundf("interruption %s not found", id)
	}
	item, err := s.item(ctx, ev)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Latest returns the most recently recorded interruption, or nil.
func (s *HistoryService) Latest(ctx context.Context) (*domain.HistoryItem, error) {
	ev, err := s.repos.Interruptions.FindLatest(ctx)
	if err != nil || ev == nil {
		return nil, err
	}
	item, err := s.item(ctx, ev)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// LatestOpen returns the latest interruption if it is still unresolved
// (no resume event yet, or a trailing snooze), or nil.
func (s *HistoryService) LatestOpen(ctx context.Context) (*domain.HistoryItem, error) {
	item, err := s.Latest(ctx)
	if err != nil || item == nil {
		return nil, err
	}
	switch item.Status {
	case domain.ResumeStatusResumed, domain.ResumeStatusAbandoned:
		return nil, nil
	}
	return item, nil
}

// ResumeDiff is how far past (positive) or before (negative) its effective
// deadline the interruption is right now. ok is false when it has no deadline.
func (s *HistoryService) ResumeDiff(ctx context.Context, id domain.InterruptionID) (diff time.Duration, ok bool, err error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return 0, false, err
	}
	if item.Deadline == nil {
		return 0, false, nil
	}
	return s.now().Sub(*item.Deadline), true, nil
}

func (s *HistoryService) withStatus(ctx context.Context, events []*domain.InterruptionEvent) ([]domain.HistoryItem, error) {
	items := make([]domain.HistoryItem, 0, len(events))
	for _, ev := range events {
		item, err := s.item(ctx, ev)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *HistoryService) item(ctx context.Context, ev *domain.InterruptionEvent) (domain.HistoryItem, error) {
	latest, err := s.repos.Resumes.FindLatestByInterruptionID(ctx, ev.ID)
	if err != nil {
		return domain.HistoryItem{}, fmt.Errorf("load resume status for %s: %w", ev.ID, err)
	}

	item := domain.HistoryItem{
		Event:    ev,
		Deadline: domain.EffectiveDeadline(ev, latest),
	}
	if latest != nil {
		item.Status = latest.Status
	}
	return item, nil
}
