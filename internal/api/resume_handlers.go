package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/service"
)

func (s *Server) registerResumeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "resumeInterruption",
		Method:        http.MethodPost,
		Path:          "/api/v1/interruptions/{id}/resume",
		Summary:       "Resume",
		Description:   "Marks the interruption as resumed and cancels its reminder",
		Tags:          []string{tagInterruptions},
		DefaultStatus: http.StatusCreated,
	}, s.resumeHandler(domain.ResumeStatusResumed))

	huma.Register(s.api, huma.Operation{
		OperationID:   "snoozeInterruption",
		Method:        http.MethodPost,
		Path:          "/api/v1/interruptions/{id}/snooze",
		Summary:       "Snooze",
		Description:   "Postpones the interruption and reschedules its reminder",
		Tags:          []string{tagInterruptions},
		DefaultStatus: http.StatusCreated,
	}, s.resumeHandler(domain.ResumeStatusSnoozed))

	huma.Register(s.api, huma.Operation{
		OperationID:   "abandonInterruption",
		Method:        http.MethodPost,
		Path:          "/api/v1/interruptions/{id}/abandon",
		Summary:       "Abandon",
		Description:   "Marks the interruption as abandoned and cancels its reminder",
		Tags:          []string{tagInterruptions},
		DefaultStatus: http.StatusCreated,
	}, s.resumeHandler(domain.ResumeStatusAbandoned))
}

// ResumeRequest is the optional request body of the resume actions.
type ResumeRequest struct {
	Source        string         `json:"source,omitempty" enum:"manual,notification" doc:"Where the action came from; defaults to manual"`
	SnoozeMinutes *int           `json:"snoozeMinutes,omitempty" minimum:"1" maximum:"1440" doc:"Snooze length; snooze only"`
	Metadata      map[string]any `json:"metadata,omitempty" doc:"Free-form client data stored with the event"`
}

// ResumeActionInput selects the interruption and carries the optional body.
type ResumeActionInput struct {
	ID   string         `path:"id" doc:"Interruption ID"`
	Body *ResumeRequest `required:"false"`
}

// ResumeOutput wraps the resume result for Huma.
type ResumeOutput struct {
	Body *service.ResumeResult
}

func (s *Server) resumeHandler(status domain.ResumeStatus) func(context.Context, *ResumeActionInput) (*ResumeOutput, error) {
	return func(ctx context.Context, input *ResumeActionInput) (*ResumeOutput, error) {
		in := service.ResumeInput{InterruptionID: domain.InterruptionID(input.ID)}
		if body := input.Body; body != nil {
			in.Source = domain.ResumeSource(body.Source)
			in.SnoozeMinutes = body.SnoozeMinutes
			in.Metadata = body.Metadata
		}

		result, err := s.services.Resume.Record(ctx, in, status)
		if err != nil {
			return nil, toAPIError(err)
		}
		return &ResumeOutput{Body: result}, nil
	}
}
