package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/service"
)

func (s *Server) registerInterruptionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "captureInterruption",
		Method:        http.MethodPost,
		Path:          "/api/v1/interruptions",
		Summary:       "Capture interruption",
		Description:   "Records a new interruption and schedules its resume reminder",
		Tags:          []string{tagInterruptions},
		DefaultStatus: http.StatusCreated,
	}, s.handleCaptureInterruption)

	huma.Register(s.api, huma.Operation{
		OperationID: "listInterruptions",
		Method:      http.MethodGet,
		Path:        "/api/v1/interruptions",
		Summary:     "List interruptions",
		Description: "Returns interruptions recorded in a period, newest first, with their current status",
		Tags:        []string{tagInterruptions},
	}, s.handleListInterruptions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLatestInterruption",
		Method:      http.MethodGet,
		Path:        "/api/v1/interruptions/latest",
		Summary:     "Get latest interruption",
		Description: "Returns the most recently recorded interruption. Set open=true to get it only while unresolved",
		Tags:        []string{tagInterruptions},
	}, s.handleGetLatestInterruption)

	huma.Register(s.api, huma.Operation{
		OperationID: "getInterruption",
		Method:      http.MethodGet,
		Path:        "/api/v1/interruptions/{id}",
		Summary:     "Get interruption",
		Description: "Returns an interruption by ID with its current status",
		Tags:        []string{tagInterruptions},
	}, s.handleGetInterruption)

	huma.Register(s.api, huma.Operation{
		OperationID: "getInterruptionDeadline",
		Method:      http.MethodGet,
		Path:        "/api/v1/interruptions/{id}/deadline",
		Summary:     "Get deadline",
		Description: "Returns the effective resume deadline and how far past it the interruption is",
		Tags:        []string{tagInterruptions},
	}, s.handleGetInterruptionDeadline)
}

// === DTOs ===

// CaptureRequest is the request body for capturing an interruption.
type CaptureRequest struct {
	OccurredAt         *FlexTime `json:"occurredAt,omitempty" doc:"When work actually stopped; defaults to now"`
	TriggerTags        []string  `json:"triggerTags,omitempty" maxItems:"16" doc:"Preset tag IDs or free-text labels"`
	ReasonText         string    `json:"reasonText,omitempty" maxLength:"500" doc:"Why work stopped"`
	FirstStepText      string    `json:"firstStepText,omitempty" maxLength:"200" doc:"First thing to do on return"`
	ReturnAfterMinutes *int      `json:"returnAfterMinutes,omitempty" minimum:"0" maximum:"1440" doc:"Minutes until the resume reminder"`
}

// CaptureInput wraps the capture request for Huma.
type CaptureInput struct {
	Body CaptureRequest
}

// CaptureOutput wraps the capture result for Huma.
type CaptureOutput struct {
	Body *service.CaptureResult
}

// ListInterruptionsInput contains the history query.
type ListInterruptionsInput struct {
	From  string `query:"from" doc:"Inclusive lower bound on recordedAt (RFC 3339)"`
	To    string `query:"to" doc:"Inclusive upper bound on recordedAt (RFC 3339)"`
	Limit int    `query:"limit" minimum:"0" maximum:"500" doc:"Maximum items; 0 uses the server default"`
}

// HistoryResponse contains a page of history.
type HistoryResponse struct {
	Items []domain.HistoryItem `json:"items" doc:"Interruptions, newest first"`
}

// HistoryOutput wraps the history response for Huma.
type HistoryOutput struct {
	Body HistoryResponse
}

// LatestInterruptionInput contains parameters for the latest lookup.
type LatestInterruptionInput struct {
	Open bool `query:"open" doc:"Only return the latest interruption if it is unresolved"`
}

// HistoryItemResponse holds a single, possibly absent, history item.
type HistoryItemResponse struct {
	Item *domain.HistoryItem `json:"item" doc:"The interruption, or null"`
}

// HistoryItemOutput wraps a single history item for Huma.
type HistoryItemOutput struct {
	Body HistoryItemResponse
}

// InterruptionIDInput selects an interruption by path.
type InterruptionIDInput struct {
	ID string `path:"id" doc:"Interruption ID"`
}

// DeadlineResponse describes where an interruption stands against its deadline.
type DeadlineResponse struct {
	HasDeadline bool       `json:"hasDeadline" doc:"Whether a deadline is set"`
	Deadline    *time.Time `json:"deadline,omitempty" doc:"Effective deadline, honoring a trailing snooze"`
	DiffSeconds int64      `json:"diffSeconds" doc:"Seconds past (positive) or before (negative) the deadline"`
	Overdue     bool       `json:"overdue" doc:"Whether the deadline has passed"`
}

// DeadlineOutput wraps the deadline response for Huma.
type DeadlineOutput struct {
	Body DeadlineResponse
}

// === Handlers ===

func (s *Server) handleCaptureInterruption(ctx context.Context, input *CaptureInput) (*CaptureOutput, error) {
	in := service.CaptureInput{
		TriggerTags:        input.Body.TriggerTags,
		ReasonText:         input.Body.ReasonText,
		FirstStepText:      input.Body.FirstStepText,
		ReturnAfterMinutes: input.Body.ReturnAfterMinutes,
	}
	if input.Body.OccurredAt != nil {
		t := input.Body.OccurredAt.ToTime()
		in.OccurredAt = &t
	}

	result, err := s.services.Capture.Capture(ctx, in)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &CaptureOutput{Body: result}, nil
}

func (s *Server) handleListInterruptions(ctx context.Context, input *ListInterruptionsInput) (*HistoryOutput, error) {
	q, ok := domain.ParseHistoryQuery(input.From, input.To, input.Limit)
	if !ok {
		// Unparseable bounds select nothing.
		return &HistoryOutput{Body: HistoryResponse{Items: []domain.HistoryItem{}}}, nil
	}

	items, err := s.services.History.List(ctx, q)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &HistoryOutput{Body: HistoryResponse{Items: items}}, nil
}

func (s *Server) handleGetLatestInterruption(ctx context.Context, input *LatestInterruptionInput) (*HistoryItemOutput, error) {
	latest := s.services.History.Latest
	if input.Open {
		latest = s.services.History.LatestOpen
	}

	item, err := latest(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &HistoryItemOutput{Body: HistoryItemResponse{Item: item}}, nil
}

func (s *Server) handleGetInterruption(ctx context.Context, input *InterruptionIDInput) (*HistoryItemOutput, error) {
	item, err := s.services.History.Get(ctx, domain.InterruptionID(input.ID))
	if err != nil {
		return nil, toAPIError(err)
	}
	return &HistoryItemOutput{Body: HistoryItemResponse{Item: item}}, nil
}

func (s *Server) handleGetInterruptionDeadline(ctx context.Context, input *InterruptionIDInput) (*DeadlineOutput, error) {
	id := domain.InterruptionID(input.ID)

	item, err := s.services.History.Get(ctx, id)
	if err != nil {
		return nil, toAPIError(err)
	}
	diff, ok, err := s.services.History.ResumeDiff(ctx, id)
	if err != nil {
		return nil, toAPIError(err)
	}

	return &DeadlineOutput{Body: DeadlineResponse{
		HasDeadline: ok,
		Deadline:    item.Deadline,
		DiffSeconds: int64(diff / time.Second),
		Overdue:     ok && diff > 0,
	}}, nil
}
