package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/renflow/renflow-desktop/internal/logging"
	"github.com/renflow/renflow-desktop/internal/model"
)

// ImageFilePrefix names cached notification images, one file per send
const ImageFilePrefix = "notification-image-"

// Dispatcher builds notifications from requests and submits them to a Daemon
type Dispatcher struct {
	daemon   Daemon
	client   *http.Client
	cacheDir string
	log      *slog.Logger
}

// NewDispatcher creates a dispatcher that caches message images under cacheDir
func NewDispatcher(daemon Daemon, cacheDir string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		daemon:   daemon,
		client:   &http.Client{},
		cacheDir: cacheDir,
		log:      logging.Component(logger, "notify"),
	}
}

// SetHTTPClient replaces the client used to fetch images
func (d *Dispatcher) SetHTTPClient(client *http.Client) {
	d.client = client
}

// RequestPermission asks the daemon once at startup. Failures are only logged.
func (d *Dispatcher) RequestPermission(ctx context.Context) {
	granted, err := d.daemon.RequestPermission(ctx)
	switch {
	case err != nil:
		d.log.Warn("notification permission request failed", "error", err)
	case !granted:
		d.log.Warn("notification permission denied")
	default:
		d.log.Debug("notification permission granted")
	}
}

// Send builds and submits the notification for req.
// A message whose image cannot be fetched is not submitted at all.
func (d *Dispatcher) Send(ctx context.Context, req model.NotificationRequest) error {
	log := d.log.With("tag", req.Tag, "kind", string(req.Kind))

	n := buildNotification(req)

	if req.Kind == model.NotificationKindMessage && req.HasRemoteImage() {
		path, err := d.fetchImage(ctx, req.ImageURL)
		if err != nil {
			log.Error("failed to fetch notification image", "url", req.ImageURL, "error", err)
			return err
		}
		n.ImagePath = path
	}

	id, err := d.daemon.Submit(ctx, n)
	if err != nil {
		log.Error("notification rejected", "error", err)
		return fmt.Errorf("failed to submit notification: %w", err)
	}

	log.Debug("notification submitted", "id", id, "payload", req.Payload())
	return nil
}

func buildNotification(req model.NotificationRequest) *Notification {
	n := &Notification{
		Title:    req.Title,
		Body:     req.Body,
		ThreadID: req.Tag,
		Category: CategoryMessage,
		UserInfo: map[string]string{model.PayloadKey: req.Payload()},
	}
	if req.Kind == model.NotificationKindMessage {
		n.CategoryID = CategoryReplyID
	}
	return n
}

// fetchImage downloads url into a new file under the cache directory
func (d *Dispatcher) fetchImage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("image request failed: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("image request failed: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	if err := os.MkdirAll(d.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image cache: %w", err)
	}

	path := filepath.Join(d.cacheDir, ImageFilePrefix+uuid.NewString()+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}
