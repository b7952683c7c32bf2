package service

import (
	"context"
	"log/slog"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/repository"
)

// DefaultSuggestedTags is how many custom tags the capture screen offers.
const DefaultSuggestedTags = 8

// TagService provides trigger tag suggestions.
type TagService struct {
	repos  *repository.Set
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(repos *repository.Set, logger *slog.Logger) *TagService {
	return &TagService{
		repos:  repos,
		logger: orDiscard(logger),
	}
}

// TagSuggestions groups the fixed presets and the most used custom tags.
type TagSuggestions struct {
	Presets []domain.TriggerTag       `json:"presets"`
	Custom  []domain.CustomTriggerTag `json:"custom"`
}

// Suggestions returns all presets plus up to limit custom tags, most used
// first. A non-positive limit uses DefaultSuggestedTags.
func (s *TagService) Suggestions(ctx context.Context, limit int) (*TagSuggestions, error) {
	if limit <= 0 {
		limit = DefaultSuggestedTags
	}
	custom, err := s.repos.TriggerTags.ListTopUsed(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &TagSuggestions{
		Presets: domain.PresetTriggerTags(),
		Custom:  custom,
	}, nil
}
