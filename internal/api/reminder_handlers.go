package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerReminderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReminders",
		Method:      http.MethodGet,
		Path:        "/api/v1/reminders",
		Summary:     "List reminders",
		Description: "Returns reminders waiting to fire, soonest first",
		Tags:        []string{tagReminders},
	}, s.handleListReminders)
}

// ReminderResponse is one pending reminder.
type ReminderResponse struct {
	ID             string    `json:"id" doc:"Notification ID"`
	InterruptionID string    `json:"interruptionId,omitempty" doc:"Interruption the reminder belongs to"`
	Title          string    `json:"title" doc:"Notification title"`
	Body           string    `json:"body" doc:"Notification body"`
	TriggerAt      time.Time `json:"triggerAt" doc:"When the reminder fires"`
}

// ListRemindersResponse contains pending reminders.
type ListRemindersResponse struct {
	Reminders []ReminderResponse `json:"reminders" doc:"Pending reminders"`
}

// ListRemindersOutput wraps the reminder list for Huma.
type ListRemindersOutput struct {
	Body ListRemindersResponse
}

func (s *Server) handleListReminders(ctx context.Context, _ *struct{}) (*ListRemindersOutput, error) {
	resp := ListRemindersResponse{Reminders: []ReminderResponse{}}
	if s.services.Reminders == nil {
		return &ListRemindersOutput{Body: resp}, nil
	}

	scheduled, err := s.services.Reminders.ListScheduled(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}
	for _, sc := range scheduled {
		resp.Reminders = append(resp.Reminders, ReminderResponse{
			ID:             string(sc.ID),
			InterruptionID: string(sc.InterruptionID()),
			Title:          sc.Title,
			Body:           sc.Body,
			TriggerAt:      sc.TriggerAt,
		})
	}
	return &ListRemindersOutput{Body: resp}, nil
}
