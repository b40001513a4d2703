package notify

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2"
	"github.com/google/uuid"

	"github.com/renflow/renflow-desktop/internal/logging"
	"github.com/renflow/renflow-desktop/internal/model"
)

// FyneDaemon shows notifications through the Fyne app. Fyne cannot retract a
// shown notification, so removal only drops it from the tracked set.
type FyneDaemon struct {
	app    fyne.App
	active *activeSet
	log    *slog.Logger
}

// NewFyneDaemon creates a daemon backed by app
func NewFyneDaemon(app fyne.App, logger *slog.Logger) *FyneDaemon {
	return &FyneDaemon{
		app:    app,
		active: newActiveSet(),
		log:    logging.Component(logger, "fyne-notify"),
	}
}

// Submit implements Daemon
func (d *FyneDaemon) Submit(ctx context.Context, n *Notification) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	notification := fyne.NewNotification(n.Title, n.Body)
	fyne.Do(func() {
		d.app.SendNotification(notification)
	})

	id := uuid.NewString()
	d.active.add(id, n.UserInfo)
	d.log.Debug("notification shown", "id", id)
	return id, nil
}

// ListActive implements Daemon
func (d *FyneDaemon) ListActive(ctx context.Context) ([]model.DeliveredNotification, error) {
	return d.active.list(), nil
}

// RemoveByIDs implements Daemon
func (d *FyneDaemon) RemoveByIDs(ctx context.Context, ids []string) error {
	d.active.remove(ids...)
	return nil
}

// RemoveAll implements Daemon
func (d *FyneDaemon) RemoveAll(ctx context.Context) error {
	d.active.clear()
	return nil
}

// RequestPermission implements Daemon; Fyne needs no permission
func (d *FyneDaemon) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}
