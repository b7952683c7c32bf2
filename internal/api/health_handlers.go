package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// healthCheckKey is read to confirm the backend answers. It is never written.
const healthCheckKey = "__health__"

// overdueGrace is how late a pending reminder may be before the scheduler
// counts as stalled.
const overdueGrace = time.Minute

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{tagHealth},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"storage":   s.checkStorage(ctx),
		"sse":       s.checkSSEManager(),
		"reminders": s.checkReminders(ctx),
	}

	overall := "healthy"
	for _, c := range components {
		switch {
		case c.Status == "unhealthy":
			overall = "unhealthy"
		case c.Status == "degraded" && overall == "healthy":
			overall = "degraded"
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkStorage verifies the key-value backend is readable.
func (s *Server) checkStorage(ctx context.Context) ComponentHealth {
	if s.backend == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "storage not configured",
		}
	}

	start := time.Now()
	_, _, err := s.backend.Get(ctx, healthCheckKey)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "storage read failed",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkSSEManager reports the event stream state.
func (s *Server) checkSSEManager() ComponentHealth {
	if s.sseManager == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "SSE manager not configured",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Message: formatSSEStatus(s.sseManager.ClientCount()),
	}
}

// checkReminders reports pending reminders. Reminders still waiting well past
// their trigger time mean the scheduler is not running.
func (s *Server) checkReminders(ctx context.Context) ComponentHealth {
	if s.services == nil || s.services.Reminders == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "reminder scheduler not configured",
		}
	}

	start := time.Now()
	pending, err := s.services.Reminders.ListScheduled(ctx)
	latency := time.Since(start)
	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "listing reminders failed",
		}
	}

	overdue := 0
	cutoff := time.Now().Add(-overdueGrace)
	for _, r := range pending {
		if r.TriggerAt.Before(cutoff) {
			overdue++
		}
	}

	h := ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: strconv.Itoa(len(pending)) + " pending",
	}
	if overdue > 0 {
		h.Status = "degraded"
		h.Message += ", " + strconv.Itoa(overdue) + " overdue"
	}
	return h
}

func formatSSEStatus(count int) string {
	switch count {
	case 0:
		return "no connected clients"
	case 1:
		return "1 connected client"
	default:
		return strconv.Itoa(count) + " connected clients"
	}
}
