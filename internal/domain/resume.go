package domain

import (
	"maps"
	"time"

	"github.com/pausememo/pausememo/internal/errors"
	"github.com/pausememo/pausememo/internal/id"
	"github.com/pausememo/pausememo/internal/validation"
)

// DefaultSnoozeMinutes applies when a snooze carries no explicit length.
const DefaultSnoozeMinutes = 5

// ResumeStatus is how an interruption was resolved.
type ResumeStatus string

const (
	ResumeStatusResumed   ResumeStatus = "resumed"
	ResumeStatusSnoozed   ResumeStatus = "snoozed"
	ResumeStatusAbandoned ResumeStatus = "abandoned"
)

// Valid reports whether s is a known status.
func (s ResumeStatus) Valid() bool {
	switch s {
	case ResumeStatusResumed, ResumeStatusSnoozed, ResumeStatusAbandoned:
		return true
	}
	return false
}

// ResumeSource is where the resolution came from.
type ResumeSource string

const (
	ResumeSourceManual       ResumeSource = "manual"
	ResumeSourceNotification ResumeSource = "notification"
)

// ResumeEvent records one resolution action for an interruption. Events are
// append-only; the last one appended for an interruption is its current status.
type ResumeEvent struct {
	ID             ResumeID       `json:"id"`
	InterruptionID InterruptionID `json:"interruptionId"`
	ResumedAt      time.Time      `json:"resumedAt"`
	Source         ResumeSource   `json:"source"`
	Status         ResumeStatus   `json:"status"`
	SnoozeMinutes  *int           `json:"snoozeMinutes,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// ResumeParams are the inputs to NewResumeEvent.
type ResumeParams struct {
	InterruptionID InterruptionID `json:"interruptionId" validate:"required"`
	Status         ResumeStatus   `json:"status" validate:"omitempty,oneof=resumed snoozed abandoned"`
	Source         ResumeSource   `json:"source" validate:"omitempty,oneof=manual notification"`
	SnoozeMinutes  *int           `json:"snoozeMinutes" validate:"omitempty,gte=1,lte=1440"`
	Metadata       map[string]any `json:"metadata"`
	// ResumedAt defaults to the current time.
	ResumedAt time.Time `json:"resumedAt"`
}

var paramValidator = validation.New()

// NewResumeEvent builds a resume event. Source defaults to manual and
// Status to resumed.
func NewResumeEvent(p ResumeParams) (*ResumeEvent, error) {
	if err := paramValidator.Validate(p); err != nil {
		return nil, err
	}

	rawID, err := id.TimeOrdered()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate resume id")
	}

	ev := &ResumeEvent{
		ID:             ResumeID(rawID),
		InterruptionID: p.InterruptionID,
		ResumedAt:      p.ResumedAt,
		Source:         p.Source,
		Status:         p.Status,
		Metadata:       maps.Clone(p.Metadata),
	}
	if ev.ResumedAt.IsZero() {
		ev.ResumedAt = time.Now()
	}
	ev.ResumedAt = normalizeTime(ev.ResumedAt)
	if ev.Source == "" {
		ev.Source = ResumeSourceManual
	}
	if ev.Status == "" {
		ev.Status = ResumeStatusResumed
	}
	if p.SnoozeMinutes != nil {
		m := *p.SnoozeMinutes
		ev.SnoozeMinutes = &m
	}
	return ev, nil
}

// NextDeadline is when a snoozed interruption is due again: ResumedAt plus
// the snooze length (DefaultSnoozeMinutes when unset). ok is false for
// events that are not snoozes.
func (e *ResumeEvent) NextDeadline() (t time.Time, ok bool) {
	if e.Status != ResumeStatusSnoozed {
		return time.Time{}, false
	}
	minutes := DefaultSnoozeMinutes
	if e.SnoozeMinutes != nil {
		minutes = *e.SnoozeMinutes
	}
	return AddMinutesTime(e.ResumedAt, minutes), true
}

// EffectiveDeadline returns when ev is due, given its latest resume event.
// A trailing snooze overrides the originally scheduled time. A trailing
// resumed or abandoned event leaves the original schedule in place.
func EffectiveDeadline(ev *InterruptionEvent, latest *ResumeEvent) *time.Time {
	if latest != nil {
		if t, ok := latest.NextDeadline(); ok {
			return &t
		}
	}
	if ev == nil {
		return nil
	}
	return ev.ScheduledResumeAt
}
