package providers

import (
	"github.com/samber/do/v2"

	"github.com/pausememo/pausememo/internal/config"
	"github.com/pausememo/pausememo/internal/logger"
	"github.com/pausememo/pausememo/internal/notification"
	"github.com/pausememo/pausememo/internal/repository"
	"github.com/pausememo/pausememo/internal/service"
)

// ProvideCaptureService provides the interruption capture service.
func ProvideCaptureService(i do.Injector) (*service.CaptureService, error) {
	repos := do.MustInvoke[*repository.Set](i)
	orchestrator := do.MustInvoke[*notification.Orchestrator](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCaptureService(repos, orchestrator, sseHandle.Manager, log.Logger), nil
}

// ProvideResumeService provides the resume/snooze/abandon service.
func ProvideResumeService(i do.Injector) (*service.ResumeService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	repos := do.MustInvoke[*repository.Set](i)
	orchestrator := do.MustInvoke[*notification.Orchestrator](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewResumeService(repos, orchestrator, sseHandle.Manager, cfg.Reminders.DefaultSnoozeMinutes, log.Logger), nil
}

// ProvideHistoryService provides the history query service.
func ProvideHistoryService(i do.Injector) (*service.HistoryService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	repos := do.MustInvoke[*repository.Set](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewHistoryService(repos, cfg.History.DefaultLimit, log.Logger), nil
}

// ProvideSummaryService provides the summary service.
func ProvideSummaryService(i do.Injector) (*service.SummaryService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	repos := do.MustInvoke[*repository.Set](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSummaryService(repos, cfg.App.Location, log.Logger), nil
}

// ProvideSettingsService provides the settings service.
func ProvideSettingsService(i do.Injector) (*service.SettingsService, error) {
	repos := do.MustInvoke[*repository.Set](i)
	orchestrator := do.MustInvoke[*notification.Orchestrator](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSettingsService(repos, orchestrator, sseHandle.Manager, log.Logger), nil
}

// ProvideDataService provides the bulk data service.
func ProvideDataService(i do.Injector) (*service.DataService, error) {
	repos := do.MustInvoke[*repository.Set](i)
	orchestrator := do.MustInvoke[*notification.Orchestrator](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDataService(repos, orchestrator, sseHandle.Manager, log.Logger), nil
}

// ProvideTagService provides the trigger tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	repos := do.MustInvoke[*repository.Set](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(repos, log.Logger), nil
}
