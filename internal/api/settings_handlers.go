package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pausememo/pausememo/internal/domain"
)

func (s *Server) registerSettingsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSettings",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings",
		Summary:     "Get settings",
		Description: "Returns the current settings",
		Tags:        []string{tagSettings},
	}, s.handleGetSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSettings",
		Method:      http.MethodPatch,
		Path:        "/api/v1/settings",
		Summary:     "Update settings",
		Description: "Updates settings. Turning notifications off cancels all pending reminders",
		Tags:        []string{tagSettings},
	}, s.handleUpdateSettings)
}

// UpdateSettingsRequest is the request body for updating settings.
// Omitted fields are left unchanged.
type UpdateSettingsRequest struct {
	NotificationsEnabled *bool   `json:"notificationsEnabled,omitempty" doc:"Deliver resume reminders"`
	AnalyticsOptIn       *bool   `json:"analyticsOptIn,omitempty" doc:"Share anonymous usage data"`
	Theme                *string `json:"theme,omitempty" enum:"light,dark,system" doc:"UI theme"`
	Language             *string `json:"language,omitempty" maxLength:"16" doc:"UI language tag"`
	WeekStart            *string `json:"weekStart,omitempty" enum:"sunday,monday" doc:"First day of a summary week"`
}

// UpdateSettingsInput wraps the update request for Huma.
type UpdateSettingsInput struct {
	Body UpdateSettingsRequest
}

// SettingsOutput wraps settings for Huma.
type SettingsOutput struct {
	Body domain.Settings
}

func (s *Server) handleGetSettings(ctx context.Context, _ *struct{}) (*SettingsOutput, error) {
	settings, err := s.services.Settings.Get(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &SettingsOutput{Body: settings}, nil
}

func (s *Server) handleUpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*SettingsOutput, error) {
	body := input.Body
	patch := domain.SettingsPatch{
		NotificationsEnabled: body.NotificationsEnabled,
		AnalyticsOptIn:       body.AnalyticsOptIn,
		Language:             body.Language,
	}
	if body.Theme != nil {
		theme := domain.Theme(*body.Theme)
		patch.Theme = &theme
	}
	if body.WeekStart != nil {
		ws := domain.WeekStart(*body.WeekStart)
		patch.WeekStart = &ws
	}

	settings, err := s.services.Settings.Update(ctx, patch)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &SettingsOutput{Body: settings}, nil
}
