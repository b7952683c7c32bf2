package repository

import (
	"log/slog"

	"github.com/pausememo/pausememo/internal/store"
)

// Set bundles every repository over one backend.
type Set struct {
	Interruptions *InterruptionRepository
	Resumes       *ResumeRepository
	Bindings      *NotificationBindingRepository
	TriggerTags   *CustomTriggerTagRepository
	Settings      *SettingsRepository
}

// NewSet builds all repositories over backend.
func NewSet(backend store.Backend, keys store.Keyspace, logger *slog.Logger) (*Set, error) {
	interruptions, err := NewInterruptionRepository(backend, keys, logger)
	if err != nil {
		return nil, err
	}
	resumes, err := NewResumeRepository(backend, keys, logger)
	if err != nil {
		return nil, err
	}
	bindings, err := NewNotificationBindingRepository(backend, keys, logger)
	if err != nil {
		return nil, err
	}
	tags, err := NewCustomTriggerTagRepository(backend, keys, logger)
	if err != nil {
		return nil, err
	}
	settings, err := NewSettingsRepository(backend, keys, logger)
	if err != nil {
		return nil, err
	}
	return &Set{
		Interruptions: interruptions,
		Resumes:       resumes,
		Bindings:      bindings,
		TriggerTags:   tags,
		Settings:      settings,
	}, nil
}
