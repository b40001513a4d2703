package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/godbus/dbus/v5"

	"github.com/renflow/renflow-desktop/internal/logging"
	"github.com/renflow/renflow-desktop/internal/model"
)

// freedesktop notification service
const (
	dbusDestination = "org.freedesktop.Notifications"
	dbusPath        = dbus.ObjectPath("/org/freedesktop/Notifications")
	dbusInterface   = "org.freedesktop.Notifications"

	dbusMethodNotify      = dbusInterface + ".Notify"
	dbusMethodClose       = dbusInterface + ".CloseNotification"
	dbusMethodServerInfo  = dbusInterface + ".GetServerInformation"
	dbusSignalClosed      = dbusInterface + ".NotificationClosed"
	dbusDefaultExpiration = int32(-1)
)

// DBusDaemon shows notifications through org.freedesktop.Notifications.
// The protocol cannot list notifications or carry user info, so both are
// tracked locally and pruned when the server reports a notification closed.
type DBusDaemon struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	appName string
	active  *activeSet
	signals chan *dbus.Signal
	log     *slog.Logger
}

// NewDBusDaemon connects to the session bus
func NewDBusDaemon(appName string, logger *slog.Logger) (*DBusDaemon, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbusPath),
		dbus.WithMatchInterface(dbusInterface),
		dbus.WithMatchMember("NotificationClosed"),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to watch notification signals: %w", err)
	}

	d := &DBusDaemon{
		conn:    conn,
		obj:     conn.Object(dbusDestination, dbusPath),
		appName: appName,
		active:  newActiveSet(),
		signals: make(chan *dbus.Signal, 16),
		log:     logging.Component(logger, "dbus"),
	}
	conn.Signal(d.signals)
	go d.watch()

	return d, nil
}

// watch forgets notifications the server closed; ends when the connection closes
func (d *DBusDaemon) watch() {
	for sig := range d.signals {
		if sig.Name != dbusSignalClosed || len(sig.Body) == 0 {
			continue
		}
		id, ok := sig.Body[0].(uint32)
		if !ok {
			continue
		}
		d.active.remove(formatID(id))
	}
}

// Submit implements Daemon
func (d *DBusDaemon) Submit(ctx context.Context, n *Notification) (string, error) {
	hints := map[string]dbus.Variant{}
	if n.Category != "" {
		hints["category"] = dbus.MakeVariant(n.Category)
	}
	if n.ImagePath != "" {
		hints["image-path"] = dbus.MakeVariant("file://" + n.ImagePath)
	}

	actions := []string{"default", ""}
	if n.CategoryID != "" {
		actions = append(actions, "inline-reply", "Reply")
	}

	var id uint32
	call := d.obj.CallWithContext(ctx, dbusMethodNotify, 0,
		d.appName, uint32(0), "", n.Title, n.Body, actions, hints, dbusDefaultExpiration)
	if err := call.Store(&id); err != nil {
		return "", err
	}

	key := formatID(id)
	d.active.add(key, n.UserInfo)
	return key, nil
}

// ListActive implements Daemon
func (d *DBusDaemon) ListActive(ctx context.Context) ([]model.DeliveredNotification, error) {
	return d.active.list(), nil
}

// RemoveByIDs implements Daemon
func (d *DBusDaemon) RemoveByIDs(ctx context.Context, ids []string) error {
	var errs []error
	for _, key := range ids {
		id, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid notification id %q", key))
			continue
		}
		if err := d.obj.CallWithContext(ctx, dbusMethodClose, 0, uint32(id)).Err; err != nil {
			errs = append(errs, err)
			continue
		}
		d.active.remove(key)
	}
	return errors.Join(errs...)
}

// RemoveAll implements Daemon
func (d *DBusDaemon) RemoveAll(ctx context.Context) error {
	return d.RemoveByIDs(ctx, d.active.ids())
}

// RequestPermission implements Daemon. A server that answers
// GetServerInformation is taken as permission to notify.
func (d *DBusDaemon) RequestPermission(ctx context.Context) (bool, error) {
	var name, vendor, version, specVersion string
	err := d.obj.CallWithContext(ctx, dbusMethodServerInfo, 0).Store(&name, &vendor, &version, &specVersion)
	if err != nil {
		return false, err
	}
	d.log.Info("notification server found", "name", name, "vendor", vendor, "version", version, "spec", specVersion)
	return true, nil
}

// Close releases the bus connection
func (d *DBusDaemon) Close() error {
	return d.conn.Close()
}

func formatID(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}
