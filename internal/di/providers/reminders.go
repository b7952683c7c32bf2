package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pausememo/pausememo/internal/config"
	"github.com/pausememo/pausememo/internal/logger"
	"github.com/pausememo/pausememo/internal/notification"
	"github.com/pausememo/pausememo/internal/reminder"
	"github.com/pausememo/pausememo/internal/repository"
)

// SchedulerHandle wraps the reminder scheduler with shutdown capability.
type SchedulerHandle struct {
	*reminder.Scheduler
}

// Shutdown implements do.Shutdownable.
func (h *SchedulerHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideScheduler provides the reminder scheduler. Due reminders always go
// out on the event stream; with NOTIFY_DESKTOP they are also shown through the
// session bus when one is reachable.
//
// The scheduler is not started here. The server starts it in Bootstrap so
// short-lived CLI runs never fire timers.
func ProvideScheduler(i do.Injector) (*SchedulerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	deliverers := []reminder.Deliverer{reminder.NewSSEDeliverer(sseHandle.Manager)}
	if cfg.Reminders.Desktop {
		desktop, err := reminder.NewDesktopDeliverer(config.AppName, log.Logger)
		if err != nil {
			log.Warn("Desktop notifications unavailable, using event stream only", "error", err)
		} else {
			deliverers = append(deliverers, desktop)
		}
	}

	scheduler, err := reminder.NewScheduler(storeHandle.Backend, storeHandle.Keys, log.Logger, deliverers...)
	if err != nil {
		return nil, err
	}
	return &SchedulerHandle{Scheduler: scheduler}, nil
}

// StartScheduler re-arms persisted reminders.
func StartScheduler(ctx context.Context, i do.Injector) error {
	return do.MustInvoke[*SchedulerHandle](i).Start(ctx)
}

// ProvidePermissions provides the notification permission gate. Without
// desktop delivery the event stream is always allowed.
func ProvidePermissions(i do.Injector) (notification.PermissionGate, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Reminders.Desktop {
		gate, err := reminder.NewDesktopPermissions()
		if err == nil {
			return gate, nil
		}
		log.Warn("Desktop permission check unavailable, granting event stream delivery", "error", err)
	}
	return reminder.StaticPermissions(notification.PermissionGranted), nil
}

// ProvideOrchestrator provides the notification orchestrator.
func ProvideOrchestrator(i do.Injector) (*notification.Orchestrator, error) {
	repos := do.MustInvoke[*repository.Set](i)
	schedulerHandle := do.MustInvoke[*SchedulerHandle](i)
	permissions := do.MustInvoke[notification.PermissionGate](i)
	log := do.MustInvoke[*logger.Logger](i)

	return notification.NewOrchestrator(notification.Deps{
		Bindings:      repos.Bindings,
		Interruptions: repos.Interruptions,
		Scheduler:     schedulerHandle.Scheduler,
		Permissions:   permissions,
		Settings:      repos.Settings,
		Logger:        log.Logger,
	})
}
