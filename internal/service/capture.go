package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/notification"
	"github.com/pausememo/pausememo/internal/repository"
	"github.com/pausememo/pausememo/internal/sse"
	"github.com/pausememo/pausememo/internal/validation"
)

// CaptureService records new interruptions.
type CaptureService struct {
	repos     *repository.Set
	reminders Reminders
	events    Emitter
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewCaptureService creates a new capture service.
func NewCaptureService(repos *repository.Set, reminders Reminders, events Emitter, logger *slog.Logger) *CaptureService {
	if events == nil {
		events = NoopEmitter{}
	}
	return &CaptureService{
		repos:     repos,
		reminders: reminders,
		events:    events,
		validator: validation.New(),
		logger:    orDiscard(logger),
		now:       time.Now,
	}
}

// CaptureInput is what the user enters when stopping work.
type CaptureInput struct {
	// OccurredAt defaults to the capture time.
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
	// TriggerTags are preset ids or free-text labels.
	TriggerTags        []string `json:"triggerTags,omitempty" validate:"max=16,dive,notblank,max=40"`
	ReasonText         string   `json:"reasonText,omitempty" validate:"max=500"`
	FirstStepText      string   `json:"firstStepText,omitempty" validate:"max=200"`
	ReturnAfterMinutes *int     `json:"returnAfterMinutes,omitempty" validate:"omitempty,gte=0,lte=1440"`
}

// CaptureResult is the stored event and the fate of its reminder.
type CaptureResult struct {
	Event    *domain.InterruptionEvent `json:"event"`
	Reminder ReminderOutcome           `json:"reminder"`
}

// Capture validates input, stores a new interruption, counts custom tag usage
// and schedules a reminder at the event's ScheduledResumeAt when it has one.
// Reminder failures are reported in the result, never as an error.
func (s *CaptureService) Capture(ctx context.Context, in CaptureInput) (*CaptureResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	tags := make([]domain.TriggerTag, 0, len(in.TriggerTags))
	tagIDs := make([]domain.TriggerTagID, 0, len(in.TriggerTags))
	for _, label := range in.TriggerTags {
		tag, err := domain.NewTriggerTag(label)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
		tagIDs = append(tagIDs, tag.ID)
	}

	recordedAt := s.now()
	params := domain.InterruptionParams{
		RecordedAt: recordedAt,
		Context: domain.InterruptionContext{
			TriggerTagIDs:      tagIDs,
			ReasonText:         in.ReasonText,
			FirstStepText:      in.FirstStepText,
			ReturnAfterMinutes: in.ReturnAfterMinutes,
		},
	}
	if in.OccurredAt != nil {
		params.OccurredAt = *in.OccurredAt
	}

	ev, err := domain.NewInterruptionEvent(params)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Interruptions.Save(ctx, ev); err != nil {
		return nil, fmt.Errorf("save interruption: %w", err)
	}

	if err := s.repos.TriggerTags.UpsertUsage(ctx, tags, ev.RecordedAt); err != nil {
		s.logger.Warn("failed to record trigger tag usage",
			"interruption_id", ev.ID,
			"error", err,
		)
	}

	result := &CaptureResult{Event: ev}
	if ev.ScheduledResumeAt != nil {
		result.Reminder = upsertReminder(ctx, s.reminders, s.logger, ev.ID, *ev.ScheduledResumeAt)
	}

	s.events.Emit(sse.NewInterruptionCreatedEvent(ev))
	s.logger.Info("interruption captured",
		"interruption_id", ev.ID,
		"tags", len(tagIDs),
		"reminder_scheduled", result.Reminder.Scheduled,
	)
	return result, nil
}

// upsertReminder schedules a reminder and folds any failure into the outcome.
func upsertReminder(ctx context.Context, r Reminders, logger *slog.Logger, iid domain.InterruptionID, at time.Time) ReminderOutcome {
	nid, ok, err := r.UpsertResumeNotification(ctx, notification.UpsertParams{
		InterruptionID: iid,
		TriggerAt:      at,
	})
	if err != nil {
		logger.Warn("failed to schedule resume reminder",
			"interruption_id", iid,
			"error", err,
		)
		return ReminderOutcome{Error: err.Error()}
	}
	return ReminderOutcome{NotificationID: nid, Scheduled: ok}
}
