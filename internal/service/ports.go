// Package service implements PauseMemo's application flows on top of the
// repositories and the notification orchestrator.
package service

import (
	"context"
	"log/slog"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/notification"
	"github.com/pausememo/pausememo/internal/sse"
)

// Reminders is the orchestrator surface the services drive.
type Reminders interface {
	UpsertResumeNotification(ctx context.Context, p notification.UpsertParams) (domain.NotificationID, bool, error)
	CancelResumeNotification(ctx context.Context, id domain.InterruptionID) error
	CancelAllResumeNotifications(ctx context.Context) error
}

// Emitter publishes change events to connected clients.
type Emitter interface {
	Emit(event sse.Event)
}

// NoopEmitter discards events. Used where no client can be listening.
type NoopEmitter struct{}

// Emit implements Emitter.
func (NoopEmitter) Emit(sse.Event) {}

// ReminderOutcome reports what happened to the reminder side effect of a
// write. The write itself has already succeeded when this is returned.
type ReminderOutcome struct {
	NotificationID domain.NotificationID `json:"notificationId,omitempty"`
	Scheduled      bool                  `json:"scheduled"`
	// Error is set when scheduling or cancelling failed.
	Error string `json:"error,omitempty"`
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
