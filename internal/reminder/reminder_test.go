package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/notification"
	"github.com/pausememo/pausememo/internal/sse"
	"github.com/pausememo/pausememo/internal/store"
)

var keys = store.NewKeyspace(store.DefaultPrefix)

type recordingDeliverer struct {
	mu  sync.Mutex
	got []notification.Scheduled
}

func (d *recordingDeliverer) Deliver(_ context.Context, r notification.Scheduled) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.got = append(d.got, r)
	return nil
}

func (d *recordingDeliverer) delivered() []notification.Scheduled {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notification.Scheduled(nil), d.got...)
}

func openBackend(t *testing.T, dir string) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(dir, "db"), nil)
	require.NoError(t, err)
	return s
}

func newTestScheduler(t *testing.T, backend store.Backend, d Deliverer) *Scheduler {
	t.Helper()
	s, err := NewScheduler(backend, keys, nil, d)
	require.NoError(t, err)
	t.Cleanup(s.Stop)
	return s
}

func reminderRequest(iid string, at time.Time) notification.Request {
	return notification.Request{
		Title:     "back to it",
		Body:      "open the draft",
		Data:      map[string]string{notification.DataInterruptionID: iid},
		TriggerAt: at,
	}
}

func TestScheduler_FiresAndForgets(t *testing.T) {
	backend := openBackend(t, t.TempDir())
	t.Cleanup(func() { _ = backend.Close() })
	d := &recordingDeliverer{}
	s := newTestScheduler(t, backend, d)
	ctx := context.Background()

	nid, err := s.Schedule(ctx, reminderRequest("int-1", time.Now().Add(50*time.Millisecond)))
	require.NoError(t, err)
	assert.Regexp(t, `^ntf-`, string(nid))

	pending, err := s.ListScheduled(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, nid, pending[0].ID)

	require.Eventually(t, func() bool { return len(d.delivered()) == 1 }, 2*time.Second, 10*time.Millisecond)
	got := d.delivered()[0]
	assert.Equal(t, nid, got.ID)
	assert.Equal(t, domain.InterruptionID("int-1"), got.InterruptionID())

	pending, err = s.ListScheduled(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestScheduler_RejectsPastTrigger(t *testing.T) {
	backend := openBackend(t, t.TempDir())
	t.Cleanup(func() { _ = backend.Close() })
	s := newTestScheduler(t, backend, &recordingDeliverer{})

	_, err := s.Schedule(context.Background(), reminderRequest("int-1", time.Now().Add(-time.Second)))
	assert.Error(t, err)
}

func TestScheduler_CancelPreventsDelivery(t *testing.T) {
	backend := openBackend(t, t.TempDir())
	t.Cleanup(func() { _ = backend.Close() })
	d := &recordingDeliverer{}
	s := newTestScheduler(t, backend, d)
	ctx := context.Background()

	nid, err := s.Schedule(ctx, reminderRequest("int-1", time.Now().Add(80*time.Millisecond)))
	require.NoError(t, err)
	require.NoError(t, s.Cancel(ctx, nid))
	require.NoError(t, s.Cancel(ctx, nid))
	require.NoError(t, s.Cancel(ctx, "ntf-unknown"))

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, d.delivered())

	pending, err := s.ListScheduled(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestScheduler_ListScheduledOrdersByTrigger(t *testing.T) {
	backend := openBackend(t, t.TempDir())
	t.Cleanup(func() { _ = backend.Close() })
	s := newTestScheduler(t, backend, &recordingDeliverer{})
	ctx := context.Background()

	later, err := s.Schedule(ctx, reminderRequest("int-1", time.Now().Add(2*time.Hour)))
	require.NoError(t, err)
	sooner, err := s.Schedule(ctx, reminderRequest("int-2", time.Now().Add(time.Hour)))
	require.NoError(t, err)

	pending, err := s.ListScheduled(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, sooner, pending[0].ID)
	assert.Equal(t, later, pending[1].ID)
}

func TestScheduler_RehydratesAfterRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend := openBackend(t, dir)
	first, err := NewScheduler(backend, keys, nil)
	require.NoError(t, err)

	future, err := first.Schedule(ctx, reminderRequest("int-future", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	overdue, err := first.Schedule(ctx, reminderRequest("int-overdue", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	first.Stop()
	require.NoError(t, backend.Close())

	backend = openBackend(t, dir)
	t.Cleanup(func() { _ = backend.Close() })
	d := &recordingDeliverer{}
	second := newTestScheduler(t, backend, d)

	// The second reminder fell due while nothing was running.
	require.NoError(t, store.UpdateMap(ctx, backend, keys.ScheduledReminders(), func(m map[string]notification.Scheduled) error {
		r := m[string(overdue)]
		r.TriggerAt = time.Now().Add(-time.Minute)
		m[string(overdue)] = r
		return nil
	}))

	require.NoError(t, second.Start(ctx))

	require.Eventually(t, func() bool { return len(d.delivered()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, overdue, d.delivered()[0].ID)

	pending, err := second.ListScheduled(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, future, pending[0].ID)
}

func TestScheduler_ArmsRemindersWrittenByAnotherProcess(t *testing.T) {
	backend := openBackend(t, t.TempDir())
	t.Cleanup(func() { _ = backend.Close() })
	d := &recordingDeliverer{}
	s := newTestScheduler(t, backend, d)
	s.rescan = 20 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))

	// Written straight to the backend, the way pmctl does against a shared file.
	external := notification.Scheduled{
		ID:      "ntf-external",
		Request: reminderRequest("int-cli", time.Now().Add(100*time.Millisecond)),
	}
	require.NoError(t, store.UpdateMap(ctx, backend, keys.ScheduledReminders(), func(m map[string]notification.Scheduled) error {
		m[string(external.ID)] = external
		return nil
	}))

	require.Eventually(t, func() bool { return len(d.delivered()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, external.ID, d.delivered()[0].ID)
	assert.Equal(t, domain.InterruptionID("int-cli"), d.delivered()[0].InterruptionID())

	// Later rescans must not deliver it a second time.
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, d.delivered(), 1)

	pending, err := s.ListScheduled(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

type fakeEmitter struct{ events []sse.Event }

func (f *fakeEmitter) Emit(e sse.Event) { f.events = append(f.events, e) }

func TestSSEDeliverer(t *testing.T) {
	em := &fakeEmitter{}
	d := NewSSEDeliverer(em)

	err := d.Deliver(context.Background(), notification.Scheduled{
		ID:      "ntf-1",
		Request: reminderRequest("int-1", time.Now()),
	})
	require.NoError(t, err)
	require.Len(t, em.events, 1)
	assert.Equal(t, sse.EventReminderFired, em.events[0].Type)

	data, ok := em.events[0].Data.(sse.ReminderFiredEventData)
	require.True(t, ok)
	assert.Equal(t, domain.InterruptionID("int-1"), data.InterruptionID)
	assert.Equal(t, domain.NotificationID("ntf-1"), data.NotificationID)
}

type fakeBus struct {
	method string
	args   []any
	reply  []any
	err    error
}

func (f *fakeBus) Call(method string, _ dbus.Flags, args ...any) *dbus.Call {
	f.method = method
	f.args = args
	return &dbus.Call{Body: f.reply, Err: f.err}
}

func TestDesktopDeliverer(t *testing.T) {
	bus := &fakeBus{reply: []any{uint32(42)}}
	d := newDesktopDeliverer(bus, "PauseMemo", nil)

	err := d.Deliver(context.Background(), notification.Scheduled{
		ID:      "ntf-1",
		Request: reminderRequest("int-1", time.Now()),
	})
	require.NoError(t, err)
	assert.Equal(t, notifyMethod, bus.method)
	require.Len(t, bus.args, 8)
	assert.Equal(t, "PauseMemo", bus.args[0])
	assert.Equal(t, "back to it", bus.args[3])
	assert.Equal(t, "open the draft", bus.args[4])

	bus.err = errors.New("no server")
	assert.Error(t, d.Deliver(context.Background(), notification.Scheduled{ID: "ntf-2"}))
}

func TestDesktopPermissions(t *testing.T) {
	tests := []struct {
		name    string
		reply   []any
		err     error
		want    notification.PermissionStatus
		wantErr bool
	}{
		{name: "service present", reply: []any{true}, want: notification.PermissionGranted},
		{name: "service absent", reply: []any{false}, want: notification.PermissionDenied},
		{name: "bus failure", err: errors.New("bus down"), want: notification.PermissionUndetermined, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &DesktopPermissions{bus: &fakeBus{reply: tt.reply, err: tt.err}}

			got, err := p.Request(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStaticPermissions(t *testing.T) {
	ctx := context.Background()

	granted := StaticPermissions(notification.PermissionGranted)
	got, err := granted.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, notification.PermissionGranted, got)

	denied := StaticPermissions(notification.PermissionDenied)
	got, err = denied.Request(ctx)
	require.NoError(t, err)
	assert.Equal(t, notification.PermissionDenied, got)
}
