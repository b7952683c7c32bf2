package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/notification"
	"github.com/pausememo/pausememo/internal/repository"
	"github.com/pausememo/pausememo/internal/sse"
	"github.com/pausememo/pausememo/internal/store"
)

// 2025-03-10 is a Monday.
var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func setupRepos(t *testing.T) *repository.Set {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	repos, err := repository.NewSet(s, store.NewKeyspace(store.DefaultPrefix), nil)
	require.NoError(t, err)
	return repos
}

// clock is a settable time source shared by the services under test.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock(t time.Time) *clock { return &clock{t: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type upsertCall struct {
	InterruptionID domain.InterruptionID
	TriggerAt      time.Time
}

type fakeReminders struct {
	mu         sync.Mutex
	next       int
	upserts    []upsertCall
	cancels    []domain.InterruptionID
	cancelAll  int
	upsertErr  error
	cancelErr  error
	skipUpsert bool
}

func (f *fakeReminders) UpsertResumeNotification(_ context.Context, p notification.UpsertParams) (domain.NotificationID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return "", false, f.upsertErr
	}
	if f.skipUpsert {
		return "", false, nil
	}
	f.next++
	f.upserts = append(f.upserts, upsertCall{InterruptionID: p.InterruptionID, TriggerAt: p.TriggerAt})
	return domain.NotificationID(fmt.Sprintf("ntf-%d", f.next)), true, nil
}

func (f *fakeReminders) CancelResumeNotification(_ context.Context, id domain.InterruptionID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, id)
	return f.cancelErr
}

func (f *fakeReminders) CancelAllResumeNotifications(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelAll++
	return f.cancelErr
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// fixture wires every service over one store with a shared clock.
type fixture struct {
	repos     *repository.Set
	reminders *fakeReminders
	events    *recordingEmitter
	clock     *clock

	capture  *CaptureService
	resume   *ResumeService
	history  *HistoryService
	summary  *SummaryService
	settings *SettingsService
	data     *DataService
	tags     *TagService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repos:     setupRepos(t),
		reminders: &fakeReminders{},
		events:    &recordingEmitter{},
		clock:     newClock(baseTime),
	}
	f.capture = NewCaptureService(f.repos, f.reminders, f.events, nil)
	f.capture.now = f.clock.Now
	f.resume = NewResumeService(f.repos, f.reminders, f.events, 0, nil)
	f.resume.now = f.clock.Now
	f.history = NewHistoryService(f.repos, 0, nil)
	f.history.now = f.clock.Now
	f.summary = NewSummaryService(f.repos, time.UTC, nil)
	f.summary.now = f.clock.Now
	f.settings = NewSettingsService(f.repos, f.reminders, f.events, nil)
	f.data = NewDataService(f.repos, f.reminders, f.events, nil)
	f.tags = NewTagService(f.repos, nil)
	return f
}

// captureAt records an interruption at the given clock time.
func (f *fixture) captureAt(t *testing.T, at time.Time, in CaptureInput) *domain.InterruptionEvent {
	t.Helper()

	f.clock.mu.Lock()
	f.clock.t = at
	f.clock.mu.Unlock()

	res, err := f.capture.Capture(context.Background(), in)
	require.NoError(t, err)
	return res.Event
}

func ptr[T any](v T) *T { return &v }
