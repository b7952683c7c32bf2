package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
	"github.com/pausememo/pausememo/internal/repository"
	"github.com/pausememo/pausememo/internal/sse"
)

// ResumeService records how interruptions are resolved and keeps their
// reminders in step.
type ResumeService struct {
	repos         *repository.Set
	reminders     Reminders
	events        Emitter
	logger        *slog.Logger
	snoozeMinutes int
	now           func() time.Time
}

// NewResumeService creates a new resume service. snoozeMinutes is the
// snooze length used when a request does not name one.
func NewResumeService(repos *repository.Set, reminders Reminders, events Emitter, snoozeMinutes int, logger *slog.Logger) *ResumeService {
	if events == nil {
		events = NoopEmitter{}
	}
	if snoozeMinutes <= 0 {
		snoozeMinutes = domain.DefaultSnoozeMinutes
	}
	return &ResumeService{
		repos:         repos,
		reminders:     reminders,
		events:        events,
		logger:        orDiscard(logger),
		snoozeMinutes: snoozeMinutes,
		now:           time.Now,
	}
}

// ResumeInput selects the interruption and describes the action.
type ResumeInput struct {
	InterruptionID domain.InterruptionID
	Source         domain.ResumeSource
	// SnoozeMinutes applies to Snooze only.
	SnoozeMinutes *int
	Metadata      map[string]any
}

// ResumeResult is the stored event and the fate of the reminder.
type ResumeResult struct {
	Event    *domain.ResumeEvent `json:"event"`
	Reminder ReminderOutcome     `json:"reminder"`
}

// Resume marks the interruption as resumed and cancels its reminder.
func (s *ResumeService) Resume(ctx context.Context, in ResumeInput) (*ResumeResult, error) {
	return s.record(ctx, in, domain.ResumeStatusResumed)
}

// Abandon marks the interruption as abandoned and cancels its reminder.
func (s *ResumeService) Abandon(ctx context.Context, in ResumeInput) (*ResumeResult, error) {
	return s.record(ctx, in, domain.ResumeStatusAbandoned)
}

// Snooze postpones the interruption and reschedules its reminder at
// ResumedAt plus the snooze length.
func (s *ResumeService) Snooze(ctx context.Context, in ResumeInput) (*ResumeResult, error) {
	if in.SnoozeMinutes == nil {
		m := s.snoozeMinutes
		in.SnoozeMinutes = &m
	}
	return s.record(ctx, in, domain.ResumeStatusSnoozed)
}

// Record dispatches on status.
func (s *ResumeService) Record(ctx context.Context, in ResumeInput, status domain.ResumeStatus) (*ResumeResult, error) {
	switch status {
	case domain.ResumeStatusResumed, "":
		return s.Resume(ctx, in)
	case domain.ResumeStatusSnoozed:
		return s.Snooze(ctx, in)
	case domain.ResumeStatusAbandoned:
		return s.Abandon(ctx, in)
	default:
		return nil, errors.InvalidArgumentf("unknown resume status %q", status)
	}
}

func (s *ResumeService) record(ctx context.Context, in ResumeInput, status domain.ResumeStatus) (*ResumeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	interruption, err := s.repos.Interruptions.FindByID(ctx, in.InterruptionID)
	if err != nil {
		return nil, fmt.Errorf("load interruption: %w", err)
	}
	if interruption == nil {
		return nil, errors.NotFoundf("interruption %s not found", in.InterruptionID)
	}

	params := domain.ResumeParams{
		InterruptionID: in.InterruptionID,
		Status:         status,
		Source:         in.Source,
		Metadata:       in.Metadata,
		ResumedAt:      s.now(),
	}
	if status == domain.ResumeStatusSnoozed {
		params.SnoozeMinutes = in.SnoozeMinutes
	}

	ev, err := domain.NewResumeEvent(params)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Resumes.Save(ctx, ev); err != nil {
		return nil, fmt.Errorf("save resume: %w", err)
	}

	result := &ResumeResult{Event: ev}
	if deadline, ok := ev.NextDeadline(); ok {
		result.Reminder = upsertReminder(ctx, s.reminders, s.logger, ev.InterruptionID, deadline)
	} else if err := s.reminders.CancelResumeNotification(ctx, ev.InterruptionID); err != nil {
		s.logger.Warn("failed to cancel resume reminder",
			"interruption_id", ev.InterruptionID,
			"error", err,
		)
		result.Reminder = ReminderOutcome{Error: err.Error()}
	}

	s.events.Emit(sse.NewResumeRecordedEvent(ev))
	s.logger.Info("resume recorded",
		"interruption_id", ev.InterruptionID,
		"resume_id", ev.ID,
		"status", ev.Status,
		"source", ev.Source,
	)
	return result, nil
}
