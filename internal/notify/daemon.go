// Package notify submits desktop notifications and closes them again by tag.
//
// A Daemon is the platform notification service. The Dispatcher turns typed
// requests into notifications, and the Reaper removes delivered ones either by
// tag prefix or all at once.
package notify

import (
	"context"

	"github.com/renflow/renflow-desktop/internal/model"
)

// XDG category and reply category attached to chat messages
const (
	CategoryMessage = "im.received"
	CategoryReplyID = "cn.stapxs.qqweb.reply"
)

// Notification is what gets handed to a Daemon
type Notification struct {
	Title      string
	Body       string
	ThreadID   string // grouping key, the request tag
	Category   string
	CategoryID string // set for messages that accept inline replies
	UserInfo   map[string]string
	ImagePath  string // local file, empty when there is no image
}

// Daemon is the platform notification service
type Daemon interface {
	// Submit shows n and returns the id the daemon assigned
	Submit(ctx context.Context, n *Notification) (string, error)
	// ListActive returns every notification still shown
	ListActive(ctx context.Context) ([]model.DeliveredNotification, error)
	// RemoveByIDs closes the given notifications; an empty set is a no-op
	RemoveByIDs(ctx context.Context, ids []string) error
	// RemoveAll closes every notification of this application
	RemoveAll(ctx context.Context) error
	// RequestPermission reports whether notifications may be shown
	RequestPermission(ctx context.Context) (bool, error)
}
