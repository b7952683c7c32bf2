// Package di wires PauseMemo's components together with samber/do.
package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pausememo/pausememo/internal/config"
	"github.com/pausememo/pausememo/internal/di/providers"
	"github.com/pausememo/pausememo/internal/logger"
	"github.com/pausememo/pausememo/internal/notification"
	"github.com/pausememo/pausememo/internal/repository"
	"github.com/pausememo/pausememo/internal/service"
)

// NewContainer creates the server container. Configuration comes from the
// process flags and environment.
func NewContainer() *do.RootScope {
	injector := do.New()

	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	registerCore(injector)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// NewCLIContainer creates a container for one-shot commands around an
// already loaded configuration and logger. It has no HTTP server.
func NewCLIContainer(cfg *config.Config, log *logger.Logger) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, log)
	registerCore(injector)

	return injector
}

func registerCore(injector do.Injector) {
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideRepositories)

	// Notification layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideScheduler)
	do.Provide(injector, providers.ProvidePermissions)
	do.Provide(injector, providers.ProvideOrchestrator)

	// Business services
	do.Provide(injector, providers.ProvideCaptureService)
	do.Provide(injector, providers.ProvideResumeService)
	do.Provide(injector, providers.ProvideHistoryService)
	do.Provide(injector, providers.ProvideSummaryService)
	do.Provide(injector, providers.ProvideSettingsService)
	do.Provide(injector, providers.ProvideDataService)
	do.Provide(injector, providers.ProvideTagService)
}

// Bootstrap initializes the server's services, re-arms persisted reminders
// and starts listening.
func Bootstrap(ctx context.Context, injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*repository.Set](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*notification.Orchestrator](injector)

	if err := providers.StartScheduler(ctx, injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*providers.APIServerHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}

// Services resolves every business service. Used by the CLI.
func Services(injector do.Injector) (*ServiceSet, error) {
	var (
		set ServiceSet
		err error
	)
	if set.Capture, err = do.Invoke[*service.CaptureService](injector); err != nil {
		return nil, err
	}
	if set.Resume, err = do.Invoke[*service.ResumeService](injector); err != nil {
		return nil, err
	}
	if set.History, err = do.Invoke[*service.HistoryService](injector); err != nil {
		return nil, err
	}
	if set.Summary, err = do.Invoke[*service.SummaryService](injector); err != nil {
		return nil, err
	}
	if set.Settings, err = do.Invoke[*service.SettingsService](injector); err != nil {
		return nil, err
	}
	if set.Data, err = do.Invoke[*service.DataService](injector); err != nil {
		return nil, err
	}
	if set.Tags, err = do.Invoke[*service.TagService](injector); err != nil {
		return nil, err
	}
	sched, err := do.Invoke[*providers.SchedulerHandle](injector)
	if err != nil {
		return nil, err
	}
	set.Scheduler = sched
	return &set, nil
}

// ServiceSet is every business service plus the scheduler, resolved.
type ServiceSet struct {
	Capture   *service.CaptureService
	Resume    *service.ResumeService
	History   *service.HistoryService
	Summary   *service.SummaryService
	Settings  *service.SettingsService
	Data      *service.DataService
	Tags      *service.TagService
	Scheduler *providers.SchedulerHandle
}
