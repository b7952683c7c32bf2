package api

import (
	"context"

	"github.com/pausememo/pausememo/internal/notification"
	"github.com/pausememo/pausememo/internal/service"
)

// ReminderLister lists reminders waiting to fire.
type ReminderLister interface {
	ListScheduled(ctx context.Context) ([]notification.Scheduled, error)
}

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Capture   *service.CaptureService
	Resume    *service.ResumeService
	History   *service.HistoryService
	Summary   *service.SummaryService
	Settings  *service.SettingsService
	Data      *service.DataService
	Tags      *service.TagService
	Reminders ReminderLister // Pending reminders, for diagnostics
}
