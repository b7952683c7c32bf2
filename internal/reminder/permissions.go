package reminder

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/pausememo/pausememo/internal/notification"
)

// StaticPermissions always answers with the same status. Requests never
// change it.
type StaticPermissions notification.PermissionStatus

// Status implements notification.PermissionGate.
func (p StaticPermissions) Status(context.Context) (notification.PermissionStatus, error) {
	return notification.PermissionStatus(p), nil
}

// Request implements notification.PermissionGate.
func (p StaticPermissions) Request(ctx context.Context) (notification.PermissionStatus, error) {
	return p.Status(ctx)
}

// DesktopPermissions grants notifications while the session bus has an owner
// for the freedesktop notification service. There is nothing to prompt for:
// Request re-checks.
type DesktopPermissions struct {
	bus caller
}

// NewDesktopPermissions connects to the session bus.
func NewDesktopPermissions() (*DesktopPermissions, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &DesktopPermissions{bus: conn.BusObject()}, nil
}

// Status implements notification.PermissionGate.
func (p *DesktopPermissions) Status(ctx context.Context) (notification.PermissionStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var has bool
	if err := p.bus.Call(nameHasOwnerMethod, 0, notificationsService).Store(&has); err != nil {
		return notification.PermissionUndetermined, fmt.Errorf("query notification service: %w", err)
	}
	if has {
		return notification.PermissionGranted, nil
	}
	return notification.PermissionDenied, nil
}

// Request implements notification.PermissionGate.
func (p *DesktopPermissions) Request(ctx context.Context) (notification.PermissionStatus, error) {
	return p.Status(ctx)
}
