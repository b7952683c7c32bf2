package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pausememo/pausememo/internal/domain"
)

func startManager(t *testing.T) *Manager {
	t.Helper()

	m := NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m
}

func TestManager_BroadcastsToAllClients(t *testing.T) {
	m := startManager(t)

	a, err := m.Connect(Filter{})
	require.NoError(t, err)
	b, err := m.Connect(Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, m.ClientCount())

	m.Emit(NewHistoryClearedEvent(true))

	for _, c := range []*Client{a, b} {
		select {
		case ev := <-c.EventChan:
			assert.Equal(t, EventHistoryCleared, ev.Type)
			assert.Equal(t, HistoryClearedEventData{IncludeTags: true}, ev.Data)
		case <-time.After(time.Second):
			t.Fatalf("client %s received nothing", c.ID)
		}
	}
}

func TestManager_Disconnect(t *testing.T) {
	m := startManager(t)

	c, err := m.Connect(Filter{})
	require.NoError(t, err)

	m.Disconnect(c.ID)
	m.Disconnect(c.ID)

	assert.Zero(t, m.ClientCount())
	_, open := <-c.Done
	assert.False(t, open)
}

func TestManager_EmitAfterShutdownIsDropped(t *testing.T) {
	m := NewManager(nil)
	go m.Start(context.Background())

	c, err := m.Connect(Filter{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	require.NoError(t, m.Shutdown(ctx))

	m.Emit(NewHistoryClearedEvent(false))
	assert.Zero(t, m.ClientCount())

	_, open := <-c.Done
	assert.False(t, open)
}

func TestHandler_StreamsEvents(t *testing.T) {
	m := startManager(t)
	srv := httptest.NewServer(NewHandler(m, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?types=reminder.fired", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readFrame := func() (event, data string) {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "":
				return event, data
			}
		}
	}

	event, data := readFrame()
	assert.Equal(t, "connected", event)
	assert.Contains(t, data, `"types":["reminder.fired"]`)

	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	m.Emit(NewHistoryClearedEvent(true))
	m.Emit(NewReminderFiredEvent(ReminderFiredEventData{
		NotificationID: "ntf-1",
		InterruptionID: domain.InterruptionID("int-1"),
		Title:          "back to it",
	}))

	event, data = readFrame()
	assert.Equal(t, string(EventReminderFired), event)
	assert.Contains(t, data, `"interruptionId":"int-1"`)
}

func TestHandler_RejectsNonGet(t *testing.T) {
	h := NewHandler(NewManager(nil), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/events", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestManager_FilteredClients(t *testing.T) {
	m := startManager(t)

	all, err := m.Connect(Filter{})
	require.NoError(t, err)
	reminders, err := m.Connect(Filter{Types: []EventType{EventReminderFired}})
	require.NoError(t, err)
	other, err := m.Connect(Filter{InterruptionID: "int-2"})
	require.NoError(t, err)

	m.Emit(NewReminderFiredEvent(ReminderFiredEventData{InterruptionID: "int-1"}))
	m.Emit(NewHistoryClearedEvent(false))

	receive := func(c *Client) EventType {
		t.Helper()
		select {
		case ev := <-c.EventChan:
			return ev.Type
		case <-time.After(time.Second):
			t.Fatalf("client %s received nothing", c.ID)
			return ""
		}
	}

	assert.Equal(t, EventReminderFired, receive(all))
	assert.Equal(t, EventHistoryCleared, receive(all))
	assert.Equal(t, EventReminderFired, receive(reminders))
	// int-1's reminder is filtered out; the unbound event still arrives.
	assert.Equal(t, EventHistoryCleared, receive(other))

	assert.Empty(t, reminders.EventChan)
	assert.Empty(t, other.EventChan)
}

func TestFilter(t *testing.T) {
	resume := NewResumeRecordedEvent(&domain.ResumeEvent{InterruptionID: "int-1"})
	created := NewInterruptionCreatedEvent(&domain.InterruptionEvent{ID: "int-1"})
	settings := NewSettingsUpdatedEvent(domain.DefaultSettings())

	tests := []struct {
		name   string
		filter Filter
		event  Event
		want   bool
	}{
		{"zero passes", Filter{}, resume, true},
		{"type match", ParseFilter("resume.recorded, settings.updated", ""), resume, true},
		{"type miss", ParseFilter("reminder.fired", ""), resume, false},
		{"heartbeat always", ParseFilter("reminder.fired", "int-9"), NewHeartbeatEvent(), true},
		{"same interruption", ParseFilter("", "int-1"), created, true},
		{"other interruption", ParseFilter("", " int-2 "), created, false},
		{"unbound event", ParseFilter("", "int-2"), settings, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tt.event))
		})
	}
}

func TestParseFilter_IgnoresBlanks(t *testing.T) {
	f := ParseFilter(" , reminder.fired,,", "")
	assert.Equal(t, []EventType{EventReminderFired}, f.Types)
	assert.Empty(t, f.InterruptionID)
}
