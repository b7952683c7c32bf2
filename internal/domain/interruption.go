package domain

import (
	"slices"
	"time"

	"github.com/pausememo/pausememo/internal/errors"
	"github.com/pausememo/pausememo/internal/id"
)

// InterruptionContext is what the user told us when they stopped working.
// Every field is optional.
type InterruptionContext struct {
	TriggerTagIDs      []TriggerTagID `json:"triggerTagIds"`
	ReasonText         string         `json:"reasonText,omitempty"`
	FirstStepText      string         `json:"firstStepText,omitempty"`
	ReturnAfterMinutes *int           `json:"returnAfterMinutes,omitempty"`
}

// InterruptionEvent records one work stoppage. It is written once by
// NewInterruptionEvent and afterwards only replaced wholesale by corrective
// updates that keep RecordedAt in append order.
type InterruptionEvent struct {
	ID         InterruptionID      `json:"id"`
	OccurredAt time.Time           `json:"occurredAt"`
	RecordedAt time.Time           `json:"recordedAt"`
	Context    InterruptionContext `json:"context"`
	// ScheduledResumeAt is RecordedAt + ReturnAfterMinutes, fixed at creation.
	ScheduledResumeAt *time.Time `json:"scheduledResumeAt"`
}

// InterruptionParams are the inputs to NewInterruptionEvent.
type InterruptionParams struct {
	OccurredAt time.Time
	RecordedAt time.Time
	Context    InterruptionContext
}

// NewInterruptionEvent builds a new event with a time-ordered id and a
// derived ScheduledResumeAt. OccurredAt defaults to RecordedAt.
func NewInterruptionEvent(p InterruptionParams) (*InterruptionEvent, error) {
	if p.RecordedAt.IsZero() {
		return nil, errors.InvalidArgument("recordedAt is required")
	}
	if p.OccurredAt.IsZero() {
		p.OccurredAt = p.RecordedAt
	}
	if m := p.Context.ReturnAfterMinutes; m != nil {
		if *m < 0 {
			return nil, errors.InvalidArgumentf("returnAfterMinutes must not be negative, got %d", *m)
		}
		if int64(*m) > maxWholeMinutes {
			return nil, errors.InvalidArgumentf("returnAfterMinutes out of range: %d", *m)
		}
	}

	rawID, err := id.TimeOrdered()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate interruption id")
	}

	ctx := p.Context
	ctx.TriggerTagIDs = dedupeTagIDs(ctx.TriggerTagIDs)
	if ctx.ReturnAfterMinutes != nil {
		m := *ctx.ReturnAfterMinutes
		ctx.ReturnAfterMinutes = &m
	}

	ev := &InterruptionEvent{
		ID:         InterruptionID(rawID),
		OccurredAt: normalizeTime(p.OccurredAt),
		RecordedAt: normalizeTime(p.RecordedAt),
		Context:    ctx,
	}
	if ctx.ReturnAfterMinutes != nil {
		at := AddMinutesTime(ev.RecordedAt, *ctx.ReturnAfterMinutes)
		ev.ScheduledResumeAt = &at
	}
	return ev, nil
}

// ReminderText is the body used for this event's resume reminder.
func (e *InterruptionEvent) ReminderText() string {
	return e.Context.FirstStepText
}

func dedupeTagIDs(ids []TriggerTagID) []TriggerTagID {
	out := make([]TriggerTagID, 0, len(ids))
	for _, tid := range ids {
		if tid == "" || slices.Contains(out, tid) {
			continue
		}
		out = append(out, tid)
	}
	return out
}
