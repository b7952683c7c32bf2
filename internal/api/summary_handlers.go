package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pausememo/pausememo/internal/domain"
)

func (s *Server) registerSummaryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getTodaySummary",
		Method:      http.MethodGet,
		Path:        "/api/v1/summary/today",
		Summary:     "Today's summary",
		Description: "Counts today's interruptions by status and names the most frequent trigger",
		Tags:        []string{tagSummary},
	}, s.handleTodaySummary)

	huma.Register(s.api, huma.Operation{
		OperationID: "getWeekSummary",
		Method:      http.MethodGet,
		Path:        "/api/v1/summary/week",
		Summary:     "This week's summary",
		Description: "Like today's summary, over the current week as configured in settings",
		Tags:        []string{tagSummary},
	}, s.handleWeekSummary)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPeriodSummary",
		Method:      http.MethodGet,
		Path:        "/api/v1/summary",
		Summary:     "Period summary",
		Description: "Summarizes interruptions recorded between from and to, inclusive",
		Tags:        []string{tagSummary},
	}, s.handlePeriodSummary)
}

// SummaryOutput wraps a summary for Huma.
type SummaryOutput struct {
	Body *domain.Summary
}

// PeriodSummaryInput bounds a period summary.
type PeriodSummaryInput struct {
	From string `query:"from" required:"true" doc:"Inclusive start (RFC 3339)"`
	To   string `query:"to" required:"true" doc:"Inclusive end (RFC 3339)"`
}

func (s *Server) handleTodaySummary(ctx context.Context, _ *struct{}) (*SummaryOutput, error) {
	sum, err := s.services.Summary.Today(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &SummaryOutput{Body: sum}, nil
}

func (s *Server) handleWeekSummary(ctx context.Context, _ *struct{}) (*SummaryOutput, error) {
	sum, err := s.services.Summary.Week(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &SummaryOutput{Body: sum}, nil
}

func (s *Server) handlePeriodSummary(ctx context.Context, input *PeriodSummaryInput) (*SummaryOutput, error) {
	from, err := domain.ParseTimestamp(input.From)
	if err != nil {
		return nil, toAPIError(err)
	}
	to, err := domain.ParseTimestamp(input.To)
	if err != nil {
		return nil, toAPIError(err)
	}

	sum, err := s.services.Summary.Period(ctx, from, to)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &SummaryOutput{Body: sum}, nil
}
