package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/renflow/renflow-desktop/internal/logging"
	"github.com/renflow/renflow-desktop/internal/model"
)

// Reaper closes delivered notifications
type Reaper struct {
	daemon Daemon
	log    *slog.Logger
}

// NewReaper creates a reaper over daemon
func NewReaper(daemon Daemon, logger *slog.Logger) *Reaper {
	return &Reaper{daemon: daemon, log: logging.Component(logger, "reaper")}
}

// CloseByTag removes every delivered notification whose payload belongs to prefix,
// in one bulk call. Matching follows model.MatchesTag.
func (r *Reaper) CloseByTag(ctx context.Context, prefix string) error {
	delivered, err := r.daemon.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list notifications: %w", err)
	}

	ids := make([]string, 0, len(delivered))
	for _, n := range delivered {
		payload, ok := n.Payload()
		if ok && model.MatchesTag(payload, prefix) {
			ids = append(ids, n.ID)
		}
	}

	if err := r.daemon.RemoveByIDs(ctx, ids); err != nil {
		return fmt.Errorf("failed to remove notifications: %w", err)
	}

	r.log.Debug("closed notifications by tag", "prefix", prefix, "count", len(ids))
	return nil
}

// CloseAll removes every notification of this application
func (r *Reaper) CloseAll(ctx context.Context) error {
	if err := r.daemon.RemoveAll(ctx); err != nil {
		return fmt.Errorf("failed to remove notifications: %w", err)
	}
	r.log.Debug("closed all notifications")
	return nil
}
