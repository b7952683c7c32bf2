package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pausememo/pausememo/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTriggerTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/trigger-tags",
		Summary:     "List trigger tags",
		Description: "Returns the preset tags and the most used custom tags",
		Tags:        []string{tagTriggerTags},
	}, s.handleListTriggerTags)
}

// === DTOs ===

// ListTriggerTagsInput contains parameters for listing tags.
type ListTriggerTagsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"50" doc:"Maximum custom tags; 0 uses the default"`
}

// ListTriggerTagsOutput wraps the tag suggestions for Huma.
type ListTriggerTagsOutput struct {
	Body *service.TagSuggestions
}

// === Handlers ===

func (s *Server) handleListTriggerTags(ctx context.Context, input *ListTriggerTagsInput) (*ListTriggerTagsOutput, error) {
	tags, err := s.services.Tags.Suggestions(ctx, input.Limit)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &ListTriggerTagsOutput{Body: tags}, nil
}
