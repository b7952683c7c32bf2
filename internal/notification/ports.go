// Package notification keeps scheduled resume reminders consistent with the
// interruptions they belong to: at most one live reminder per interruption,
// and a persisted binding that always names it.
package notification

import (
	"context"
	"time"

	"github.com/pausememo/pausememo/internal/domain"
)

// DataInterruptionID is the payload key carrying the interruption id on every
// scheduled reminder. Whoever handles a delivered reminder reads it back to
// find the interruption the user is responding to.
const DataInterruptionID = "interruptionId"

// Request describes one reminder to schedule.
type Request struct {
	Title     string            `json:"title"`
	Body      string            `json:"body,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	TriggerAt time.Time         `json:"triggerAt"`
}

// Scheduled is a reminder the scheduler still holds.
type Scheduled struct {
	ID domain.NotificationID `json:"id"`
	Request
}

// InterruptionID returns the interruption the reminder belongs to.
func (s Scheduled) InterruptionID() domain.InterruptionID {
	return domain.InterruptionID(s.Data[DataInterruptionID])
}

// Scheduler delivers reminders at a future time.
type Scheduler interface {
	// Schedule registers req and returns its id. TriggerAt must be in the future.
	Schedule(ctx context.Context, req Request) (domain.NotificationID, error)
	// Cancel drops a pending reminder. Unknown or already delivered ids are not an error.
	Cancel(ctx context.Context, id domain.NotificationID) error
	ListScheduled(ctx context.Context) ([]Scheduled, error)
}

// PermissionStatus is the platform's answer to "may we notify the user".
type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

// PermissionGate reports and requests notification permission.
type PermissionGate interface {
	Status(ctx context.Context) (PermissionStatus, error)
	Request(ctx context.Context) (PermissionStatus, error)
}

// SettingsReader exposes the user's global notification switch.
type SettingsReader interface {
	NotificationsEnabled(ctx context.Context) (bool, error)
}

// BindingStore persists the interruption → notification mapping.
type BindingStore interface {
	Save(ctx context.Context, interruptionID domain.InterruptionID, notificationID domain.NotificationID) error
	Find(ctx context.Context, interruptionID domain.InterruptionID) (domain.NotificationID, bool, error)
	Delete(ctx context.Context, interruptionID domain.InterruptionID) error
	DeleteAll(ctx context.Context) error
	Bindings(ctx context.Context) (map[domain.InterruptionID]domain.NotificationID, error)
}

// InterruptionReader loads the interruption a reminder is about.
type InterruptionReader interface {
	FindByID(ctx context.Context, id domain.InterruptionID) (*domain.InterruptionEvent, error)
}
