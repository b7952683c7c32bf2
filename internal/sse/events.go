// Package sse streams PauseMemo events to connected clients over
// Server-Sent Events.
package sse

import (
	"time"

	"github.com/pausememo/pausememo/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventReminderFired is sent when a resume reminder comes due. Clients use
	// its interruption id to offer resume, snooze and abandon actions.
	EventReminderFired EventType = "reminder.fired"

	EventInterruptionCreated EventType = "interruption.created"
	EventResumeRecorded      EventType = "resume.recorded"
	EventHistoryCleared      EventType = "history.cleared"
	EventSettingsUpdated     EventType = "settings.updated"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// ReminderFiredEventData is the data payload for reminder.fired.
type ReminderFiredEventData struct {
	NotificationID domain.NotificationID `json:"notificationId"`
	InterruptionID domain.InterruptionID `json:"interruptionId"`
	Title          string                `json:"title"`
	Body           string                `json:"body,omitempty"`
	TriggerAt      time.Time             `json:"triggerAt"`
}

// InterruptionEventData is the data payload for interruption.created.
type InterruptionEventData struct {
	Interruption *domain.InterruptionEvent `json:"interruption"`
}

// ResumeEventData is the data payload for resume.recorded.
type ResumeEventData struct {
	Resume *domain.ResumeEvent `json:"resume"`
}

// HistoryClearedEventData is the data payload for history.cleared.
type HistoryClearedEventData struct {
	IncludeTags bool `json:"includeTags"`
}

// SettingsEventData is the data payload for settings.updated.
type SettingsEventData struct {
	Settings domain.Settings `json:"settings"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"serverTime"`
}

// NewReminderFiredEvent creates a reminder.fired event.
func NewReminderFiredEvent(data ReminderFiredEventData) Event {
	return Event{
		Type:      EventReminderFired,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewInterruptionCreatedEvent creates an interruption.created event.
func NewInterruptionCreatedEvent(ev *domain.InterruptionEvent) Event {
	return Event{
		Type:      EventInterruptionCreated,
		Data:      InterruptionEventData{Interruption: ev},
		Timestamp: time.Now(),
	}
}

// NewResumeRecordedEvent creates a resume.recorded event.
func NewResumeRecordedEvent(ev *domain.ResumeEvent) Event {
	return Event{
		Type:      EventResumeRecorded,
		Data:      ResumeEventData{Resume: ev},
		Timestamp: time.Now(),
	}
}

// NewHistoryClearedEvent creates a history.cleared event.
func NewHistoryClearedEvent(includeTags bool) Event {
	return Event{
		Type:      EventHistoryCleared,
		Data:      HistoryClearedEventData{IncludeTags: includeTags},
		Timestamp: time.Now(),
	}
}

// NewSettingsUpdatedEvent creates a settings.updated event.
func NewSettingsUpdatedEvent(s domain.Settings) Event {
	return Event{
		Type:      EventSettingsUpdated,
		Data:      SettingsEventData{Settings: s},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
