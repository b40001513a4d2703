// Package bridge serves the command surface of the web UI: a JSON API for
// commands and window chrome, and a websocket that pushes events.
package bridge

import (
	"context"

	"github.com/renflow/renflow-desktop/internal/config"
	"github.com/renflow/renflow-desktop/internal/model"
	"github.com/renflow/renflow-desktop/internal/store"
)

// Downloader streams a file chosen by the user
type Downloader interface {
	Download(ctx context.Context, req model.DownloadRequest) (model.DownloadStatus, error)
	ActiveCount() int
}

// Notifier submits notifications
type Notifier interface {
	Send(ctx context.Context, req model.NotificationRequest) error
	RequestPermission(ctx context.Context)
}

// NotificationCloser closes delivered notifications
type NotificationCloser interface {
	CloseByTag(ctx context.Context, prefix string) error
	CloseAll(ctx context.Context) error
}

// Fetcher performs remote fetches the UI cannot do itself
type Fetcher interface {
	FinalRedirectURL(ctx context.Context, url string) (string, error)
	GetHTML(ctx context.Context, url string) (string, error)
	GetAPI(ctx context.Context, url string) (any, error)
}

// WindowController applies window chrome operations
type WindowController interface {
	Apply(op string) (any, error)
}

// Deps are the services behind the commands
type Deps struct {
	Runtime       config.Runtime
	Downloads     Downloader
	Notifications Notifier
	Reaper        NotificationCloser
	Web           Fetcher
	Window        WindowController
	Store         store.Store
}
