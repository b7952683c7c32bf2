package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
)

const (
	defaultTitle = "Time to get back to it"
	fallbackBody = "Pick up where you left off."
)

// Deps are the Orchestrator's collaborators. Every field except Logger and
// Clock is required.
type Deps struct {
	Bindings      BindingStore
	Interruptions InterruptionReader
	Scheduler     Scheduler
	Permissions   PermissionGate
	Settings      SettingsReader
	Logger        *slog.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Orchestrator schedules, replaces and cancels resume reminders. It keeps the
// binding store in step with the scheduler so each interruption has at most
// one live reminder.
type Orchestrator struct {
	bindings      BindingStore
	interruptions InterruptionReader
	scheduler     Scheduler
	permissions   PermissionGate
	settings      SettingsReader
	logger        *slog.Logger
	now           func() time.Time
	locks         *keyedLocks[domain.InterruptionID]
}

// NewOrchestrator validates deps and builds an Orchestrator.
func NewOrchestrator(deps Deps) (*Orchestrator, error) {
	switch {
	case deps.Bindings == nil:
		return nil, errors.NotInitialized("notification binding store")
	case deps.Interruptions == nil:
		return nil, errors.NotInitialized("interruption reader")
	case deps.Scheduler == nil:
		return nil, errors.NotInitialized("notification scheduler")
	case deps.Permissions == nil:
		return nil, errors.NotInitialized("notification permission gate")
	case deps.Settings == nil:
		return nil, errors.NotInitialized("settings reader")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		bindings:      deps.Bindings,
		interruptions: deps.Interruptions,
		scheduler:     deps.Scheduler,
		permissions:   deps.Permissions,
		settings:      deps.Settings,
		logger:        logger.With("component", "notification"),
		now:           now,
		locks:         newKeyedLocks[domain.InterruptionID](),
	}, nil
}

// UpsertParams select the interruption and when to remind about it. The
// wording is always derived from the stored interruption.
type UpsertParams struct {
	InterruptionID domain.InterruptionID
	TriggerAt      time.Time
}

// UpsertResumeNotification makes a reminder at p.TriggerAt the interruption's
// only live reminder. It returns the new id and true when one was scheduled.
//
// Nothing is scheduled, and no error is returned, when permission is denied,
// TriggerAt is not in the future, or the user has switched notifications off.
// Any previous reminder is then left in place.
func (o *Orchestrator) UpsertResumeNotification(ctx context.Context, p UpsertParams) (domain.NotificationID, bool, error) {
	if p.InterruptionID == "" {
		return "", false, errors.InvalidArgument("interruption id is required")
	}

	unlock := o.locks.lock(p.InterruptionID)
	defer unlock()

	granted, err := o.ensurePermission(ctx)
	if err != nil {
		return "", false, err
	}
	if !granted {
		o.logger.Debug("notification permission not granted", "interruption_id", p.InterruptionID)
		return "", false, nil
	}

	if !p.TriggerAt.After(o.now()) {
		o.logger.Debug("trigger time not in the future, skipping",
			"interruption_id", p.InterruptionID,
			"trigger_at", p.TriggerAt,
		)
		return "", false, nil
	}

	enabled, err := o.settings.NotificationsEnabled(ctx)
	if err != nil {
		return "", false, err
	}
	if !enabled {
		o.logger.Debug("notifications disabled in settings", "interruption_id", p.InterruptionID)
		return "", false, nil
	}

	if existing, ok, err := o.bindings.Find(ctx, p.InterruptionID); err != nil {
		return "", false, err
	} else if ok {
		o.cancelQuietly(ctx, p.InterruptionID, existing)
	}

	req, err := o.buildRequest(ctx, p)
	if err != nil {
		return "", false, err
	}

	nid, err := o.scheduler.Schedule(ctx, req)
	if err != nil {
		return "", false, errors.Wrapf(err, errors.CodeScheduling, "schedule reminder for %s", p.InterruptionID)
	}

	if err := o.bindings.Save(ctx, p.InterruptionID, nid); err != nil {
		// Without a binding the reminder could never be cancelled.
		o.cancelQuietly(ctx, p.InterruptionID, nid)
		return "", false, err
	}

	o.logger.Info("resume reminder scheduled",
		"interruption_id", p.InterruptionID,
		"notification_id", nid,
		"trigger_at", req.TriggerAt,
	)
	return nid, true, nil
}

// CancelResumeNotification cancels the interruption's reminder, if any, and
// drops its binding.
func (o *Orchestrator) CancelResumeNotification(ctx context.Context, id domain.InterruptionID) error {
	unlock := o.locks.lock(id)
	defer unlock()

	existing, ok, err := o.bindings.Find(ctx, id)
	if err != nil {
		return err
	}
	if ok {
		o.cancelQuietly(ctx, id, existing)
	}
	return o.bindings.Delete(ctx, id)
}

// CancelAllResumeNotifications cancels every bound reminder and clears the
// bindings.
func (o *Orchestrator) CancelAllResumeNotifications(ctx context.Context) error {
	all, err := o.bindings.Bindings(ctx)
	if err != nil {
		return err
	}

	for iid := range all {
		if err := o.CancelResumeNotification(ctx, iid); err != nil {
			return err
		}
	}

	o.logger.Info("all resume reminders cancelled", "count", len(all))
	return nil
}

func (o *Orchestrator) ensurePermission(ctx context.Context) (bool, error) {
	status, err := o.permissions.Status(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CodePermission, "read notification permission")
	}
	if status == PermissionGranted {
		return true, nil
	}

	status, err = o.permissions.Request(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CodePermission, "request notification permission")
	}
	return status == PermissionGranted, nil
}

func (o *Orchestrator) buildRequest(ctx context.Context, p UpsertParams) (Request, error) {
	req := Request{
		Title:     defaultTitle,
		Data:      map[string]string{DataInterruptionID: string(p.InterruptionID)},
		TriggerAt: p.TriggerAt.UTC(),
	}

	ev, err := o.interruptions.FindByID(ctx, p.InterruptionID)
	if err != nil {
		return Request{}, err
	}
	if ev != nil {
		req.Body = ev.ReminderText()
	}
	if req.Body == "" {
		req.Body = fallbackBody
	}
	return req, nil
}

// cancelQuietly cancels nid and logs failures. A reminder that has already
// fired or vanished is not an error for the scheduler either.
func (o *Orchestrator) cancelQuietly(ctx context.Context, iid domain.InterruptionID, nid domain.NotificationID) {
	if err := o.scheduler.Cancel(ctx, nid); err != nil {
		o.logger.Warn("failed to cancel reminder",
			"interruption_id", iid,
			"notification_id", nid,
			"error", err,
		)
	}
}
