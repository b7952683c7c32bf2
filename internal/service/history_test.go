package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
)

func TestHistory_ListWithStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.captureAt(t, baseTime, CaptureInput{ReturnAfterMinutes: ptr(10)})
	second := f.captureAt(t, baseTime.Add(time.Hour), CaptureInput{})
	third := f.captureAt(t, baseTime.Add(2*time.Hour), CaptureInput{})

	_, err := f.resume.Resume(ctx, ResumeInput{InterruptionID: first.ID})
	require.NoError(t, err)
	_, err = f.resume.Snooze(ctx, ResumeInput{InterruptionID: second.ID, SnoozeMinutes: ptr(15)})
	require.NoError(t, err)

	items, err := f.history.List(ctx, domain.HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, third.ID, items[0].Event.ID)
	assert.Empty(t, items[0].Status)
	assert.Nil(t, items[0].Deadline)

	assert.Equal(t, second.ID, items[1].Event.ID)
	assert.Equal(t, domain.ResumeStatusSnoozed, items[1].Status)
	require.NotNil(t, items[1].Deadline)
	assert.True(t, items[1].Deadline.Equal(baseTime.Add(2*time.Hour+15*time.Minute)))

	assert.Equal(t, first.ID, items[2].Event.ID)
	assert.Equal(t, domain.ResumeStatusResumed, items[2].Status)
	require.NotNil(t, items[2].Deadline)
	assert.True(t, items[2].Deadline.Equal(baseTime.Add(10*time.Minute)))
}

func TestHistory_ListHonoursQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := range 5 {
		f.captureAt(t, baseTime.Add(time.Duration(i)*time.Hour), CaptureInput{})
	}

	from := baseTime.Add(time.Hour)
	to := baseTime.Add(3 * time.Hour)
	items, err := f.history.List(ctx, domain.HistoryQuery{From: &from, To: &to, Limit: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].Event.RecordedAt.Equal(to))
	assert.True(t, items[1].Event.RecordedAt.Equal(baseTime.Add(2*time.Hour)))
}

func TestHistory_DefaultLimit(t *testing.T) {
	f := newFixture(t)
	svc := NewHistoryService(f.repos, 3, nil)
	for i := range 5 {
		f.captureAt(t, baseTime.Add(time.Duration(i)*time.Minute), CaptureInput{})
	}

	items, err := svc.List(context.Background(), domain.HistoryQuery{})
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestHistory_Get(t *testing.T) {
	f := newFixture(t)
	ev := f.captureAt(t, baseTime, CaptureInput{ReasonText: "call"})

	item, err := f.history.Get(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "call", item.Event.Context.ReasonText)

	_, err = f.history.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestHistory_LatestOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open, err := f.history.LatestOpen(ctx)
	require.NoError(t, err)
	assert.Nil(t, open, "no interruptions yet")

	ev := f.captureAt(t, baseTime, CaptureInput{})
	open, err = f.history.LatestOpen(ctx)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, ev.ID, open.Event.ID)

	_, err = f.resume.Snooze(ctx, ResumeInput{InterruptionID: ev.ID})
	require.NoError(t, err)
	open, err = f.history.LatestOpen(ctx)
	require.NoError(t, err)
	require.NotNil(t, open, "a snoozed interruption is still open")

	_, err = f.resume.Resume(ctx, ResumeInput{InterruptionID: ev.ID})
	require.NoError(t, err)
	open, err = f.history.LatestOpen(ctx)
	require.NoError(t, err)
	assert.Nil(t, open)

	latest, err := f.history.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, domain.ResumeStatusResumed, latest.Status)
}

func TestHistory_ResumeDiff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	scheduled := f.captureAt(t, baseTime, CaptureInput{ReturnAfterMinutes: ptr(10)})
	unscheduled := f.captureAt(t, baseTime, CaptureInput{})

	f.clock.Advance(4 * time.Minute)
	diff, ok, err := f.history.ResumeDiff(ctx, scheduled.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -6*time.Minute, diff)

	f.clock.Advance(10 * time.Minute)
	diff, ok, err = f.history.ResumeDiff(ctx, scheduled.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4*time.Minute, diff)

	_, ok, err = f.history.ResumeDiff(ctx, unscheduled.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
