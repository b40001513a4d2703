package download

import (
	"context"

	"github.com/renflow/renflow-desktop/internal/model"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	// Download runs one download to completion. A user cancellation returns
	// DownloadStatusCancelled with a nil error.
	Download(ctx context.Context, req model.DownloadRequest) (model.DownloadStatus, error)

	// SetUpdateCallback registers a function called on every status change
	SetUpdateCallback(func(model.DownloadRequest, model.DownloadStatus))

	// ActiveCount returns the number of downloads not yet finished
	ActiveCount() int
}

// Gate asks the user where to save and whether to overwrite.
// Both calls block the calling goroutine until the user answers or ctx ends.
type Gate interface {
	// PickFolder returns the chosen folder, or ok=false when the user dismissed it.
	PickFolder(ctx context.Context) (path string, ok bool, err error)
	// ConfirmOverwrite returns true only when the user answered yes.
	ConfirmOverwrite(ctx context.Context, title, description string) (bool, error)
}
