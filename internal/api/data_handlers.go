package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerDataRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteAllHistory",
		Method:        http.MethodDelete,
		Path:          "/api/v1/history",
		Summary:       "Delete all history",
		Description:   "Cancels every reminder and deletes all interruptions and resume events. Settings are kept",
		Tags:          []string{tagData},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteAllHistory)
}

// DeleteAllHistoryInput contains parameters for a purge.
type DeleteAllHistoryInput struct {
	IncludeTags bool `query:"includeTags" doc:"Also delete custom trigger tags"`
}

func (s *Server) handleDeleteAllHistory(ctx context.Context, input *DeleteAllHistoryInput) (*struct{}, error) {
	if err := s.services.Data.DeleteAllHistory(ctx, input.IncludeTags); err != nil {
		return nil, toAPIError(err)
	}
	return nil, nil
}
