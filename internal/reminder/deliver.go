package reminder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/pausememo/pausememo/internal/notification"
	"github.com/pausememo/pausememo/internal/sse"
)

// Emitter is the part of the SSE manager reminders are published through.
type Emitter interface {
	Emit(event sse.Event)
}

// SSEDeliverer broadcasts due reminders as reminder.fired events.
type SSEDeliverer struct {
	emitter Emitter
}

// NewSSEDeliverer creates an SSEDeliverer.
func NewSSEDeliverer(emitter Emitter) *SSEDeliverer {
	return &SSEDeliverer{emitter: emitter}
}

// Deliver implements Deliverer.
func (d *SSEDeliverer) Deliver(_ context.Context, r notification.Scheduled) error {
	d.emitter.Emit(sse.NewReminderFiredEvent(sse.ReminderFiredEventData{
		NotificationID: r.ID,
		InterruptionID: r.InterruptionID(),
		Title:          r.Title,
		Body:           r.Body,
		TriggerAt:      r.TriggerAt,
	}))
	return nil
}

// Freedesktop notification service coordinates.
const (
	notificationsService = "org.freedesktop.Notifications"
	notificationsPath    = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod         = notificationsService + ".Notify"
	nameHasOwnerMethod   = "org.freedesktop.DBus.NameHasOwner"
)

// caller is the slice of dbus.BusObject used here.
type caller interface {
	Call(method string, flags dbus.Flags, args ...any) *dbus.Call
}

// DesktopDeliverer shows due reminders as desktop notifications through the
// session bus.
type DesktopDeliverer struct {
	obj     caller
	appName string
	logger  *slog.Logger
}

// NewDesktopDeliverer connects to the session bus.
func NewDesktopDeliverer(appName string, logger *slog.Logger) (*DesktopDeliverer, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return newDesktopDeliverer(conn.Object(notificationsService, notificationsPath), appName, logger), nil
}

func newDesktopDeliverer(obj caller, appName string, logger *slog.Logger) *DesktopDeliverer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DesktopDeliverer{obj: obj, appName: appName, logger: logger}
}

// Deliver implements Deliverer.
func (d *DesktopDeliverer) Deliver(ctx context.Context, r notification.Scheduled) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	hints := map[string]dbus.Variant{
		"category": dbus.MakeVariant("reminder"),
	}
	call := d.obj.Call(notifyMethod, 0,
		d.appName,
		uint32(0), // replaces_id
		"",        // app_icon
		r.Title,
		r.Body,
		[]string{}, // actions
		hints,
		int32(-1), // expire_timeout: server default
	)

	var serverID uint32
	if err := call.Store(&serverID); err != nil {
		return fmt.Errorf("desktop notify: %w", err)
	}
	d.logger.Debug("desktop notification shown",
		"notification_id", r.ID,
		"desktop_id", serverID,
	)
	return nil
}
