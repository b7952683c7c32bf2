package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
	"github.com/pausememo/pausememo/internal/sse"
)

func TestCapture_StoresEventAndSchedulesReminder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.capture.Capture(ctx, CaptureInput{
		TriggerTags:        []string{"SNS", "  Coffee   break "},
		ReasonText:         "phone buzzed",
		FirstStepText:      "reread the last paragraph",
		ReturnAfterMinutes: ptr(15),
	})
	require.NoError(t, err)

	ev := res.Event
	assert.True(t, ev.RecordedAt.Equal(baseTime))
	assert.True(t, ev.OccurredAt.Equal(baseTime))
	assert.Equal(t, []domain.TriggerTagID{domain.TagSNS, "coffee break"}, ev.Context.TriggerTagIDs)
	require.NotNil(t, ev.ScheduledResumeAt)
	assert.True(t, ev.ScheduledResumeAt.Equal(baseTime.Add(15*time.Minute)))

	stored, err := f.repos.Interruptions.FindByID(ctx, ev.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "phone buzzed", stored.Context.ReasonText)

	assert.True(t, res.Reminder.Scheduled)
	assert.Equal(t, domain.NotificationID("ntf-1"), res.Reminder.NotificationID)
	require.Len(t, f.reminders.upserts, 1)
	assert.Equal(t, ev.ID, f.reminders.upserts[0].InterruptionID)
	assert.True(t, f.reminders.upserts[0].TriggerAt.Equal(*ev.ScheduledResumeAt))

	assert.Equal(t, []sse.EventType{sse.EventInterruptionCreated}, f.events.types())
}

func TestCapture_CountsCustomTagsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.captureAt(t, baseTime, CaptureInput{TriggerTags: []string{"fatigue", "Coffee"}})
	f.captureAt(t, baseTime.Add(time.Hour), CaptureInput{TriggerTags: []string{"coffee"}})

	tags, err := f.repos.TriggerTags.ListTopUsed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, domain.TriggerTagID("coffee"), tags[0].ID)
	assert.Equal(t, "Coffee", tags[0].Label)
	assert.Equal(t, 2, tags[0].UsageCount)
	assert.True(t, tags[0].LastUsedAt.Equal(baseTime.Add(time.Hour)))
}

func TestCapture_WithoutReturnTimeSchedulesNothing(t *testing.T) {
	f := newFixture(t)

	res, err := f.capture.Capture(context.Background(), CaptureInput{ReasonText: "meeting"})
	require.NoError(t, err)

	assert.Nil(t, res.Event.ScheduledResumeAt)
	assert.False(t, res.Reminder.Scheduled)
	assert.Empty(t, f.reminders.upserts)
}

func TestCapture_ExplicitOccurredAt(t *testing.T) {
	f := newFixture(t)
	occurred := baseTime.Add(-10 * time.Minute)

	res, err := f.capture.Capture(context.Background(), CaptureInput{
		OccurredAt:         &occurred,
		ReturnAfterMinutes: ptr(5),
	})
	require.NoError(t, err)

	assert.True(t, res.Event.OccurredAt.Equal(occurred))
	assert.True(t, res.Event.ScheduledResumeAt.Equal(baseTime.Add(5*time.Minute)),
		"return time counts from when the interruption was recorded")
}

func TestCapture_ReminderFailureDoesNotFailCapture(t *testing.T) {
	f := newFixture(t)
	f.reminders.upsertErr = errors.Wrap(assert.AnError, errors.CodeScheduling, "schedule reminder")

	res, err := f.capture.Capture(context.Background(), CaptureInput{ReturnAfterMinutes: ptr(10)})
	require.NoError(t, err)

	assert.False(t, res.Reminder.Scheduled)
	assert.NotEmpty(t, res.Reminder.Error)

	latest, err := f.repos.Interruptions.FindLatest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, res.Event.ID, latest.ID)
}

func TestCapture_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   CaptureInput
	}{
		{name: "negative return time", in: CaptureInput{ReturnAfterMinutes: ptr(-1)}},
		{name: "return time over a day", in: CaptureInput{ReturnAfterMinutes: ptr(1441)}},
		{name: "reason too long", in: CaptureInput{ReasonText: strings.Repeat("x", 501)}},
		{name: "empty tag", in: CaptureInput{TriggerTags: []string{""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.capture.Capture(context.Background(), tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrValidation)

			latest, err := f.repos.Interruptions.FindLatest(context.Background())
			require.NoError(t, err)
			assert.Nil(t, latest)
		})
	}
}

func TestCapture_BlankTagLabel(t *testing.T) {
	f := newFixture(t)

	_, err := f.capture.Capture(context.Background(), CaptureInput{TriggerTags: []string{"   "}})
	assert.ErrorIs(t, err, errors.ErrValidation)

	latest, err := f.repos.Interruptions.FindLatest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}
