package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/renflow/renflow-desktop/internal/events"
	"github.com/renflow/renflow-desktop/internal/logging"
	"github.com/renflow/renflow-desktop/internal/model"
)

// Transfer constants
const (
	DefaultChunkSize = 32 * 1024
	FilePermissions  = 0o644
)

// Default overwrite prompt, replaced with localized texts at startup
const (
	DefaultOverwriteTitle       = "File exists"
	DefaultOverwriteDescription = "The file already exists. Overwrite it?"
)

var (
	// ErrUnknownSize is returned when the server does not declare a content length
	ErrUnknownSize = errors.New("unable to determine file size")

	// ErrInvalidFileName is returned for names that cannot live inside the chosen folder
	ErrInvalidFileName = errors.New("invalid file name")
)

// Service handles download operations
type Service struct {
	client    *http.Client
	gate      Gate
	emitter   events.Emitter
	chunkSize int
	log       *slog.Logger

	overwriteTitle       string
	overwriteDescription string

	mu       sync.Mutex
	active   int
	onUpdate func(model.DownloadRequest, model.DownloadStatus) // callback for status changes
}

// NewService creates a new download service
func NewService(gate Gate, emitter events.Emitter, logger *slog.Logger) *Service {
	if emitter == nil {
		emitter = events.Discard
	}
	return &Service{
		client:               &http.Client{},
		gate:                 gate,
		emitter:              emitter,
		chunkSize:            DefaultChunkSize,
		log:                  logging.Component(logger, "download"),
		overwriteTitle:       DefaultOverwriteTitle,
		overwriteDescription: DefaultOverwriteDescription,
	}
}

// SetHTTPClient replaces the client used for transfers
func (s *Service) SetHTTPClient(client *http.Client) {
	s.client = client
}

// SetOverwriteTexts sets the title and description of the overwrite prompt
func (s *Service) SetOverwriteTexts(title, description string) {
	s.overwriteTitle = title
	s.overwriteDescription = description
}

// SetChunkSize sets the read buffer size; each chunk produces one progress event
func (s *Service) SetChunkSize(size int) {
	if size > 0 {
		s.chunkSize = size
	}
}

// SetUpdateCallback sets the callback function for status changes
func (s *Service) SetUpdateCallback(callback func(model.DownloadRequest, model.DownloadStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = callback
}

// ActiveCount returns the number of downloads that have not finished
func (s *Service) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Download asks for a destination, then streams req.SourceURL into it
func (s *Service) Download(ctx context.Context, req model.DownloadRequest) (model.DownloadStatus, error) {
	log := s.log.With("url", req.SourceURL)
	log.Info("download requested", "file", req.FileName)

	s.begin(req)
	status, err := s.run(ctx, req, log)
	s.finish(req, status)

	return status, err
}

func (s *Service) run(ctx context.Context, req model.DownloadRequest, log *slog.Logger) (model.DownloadStatus, error) {
	name, err := sanitizeFileName(req.FileName)
	if err != nil {
		return s.fail(log, err)
	}

	folder, ok, err := s.gate.PickFolder(ctx)
	if err != nil {
		return s.fail(log, fmt.Errorf("folder selection failed: %w", err))
	}
	if !ok {
		log.Info("user cancelled folder selection")
		return s.cancel()
	}

	path := filepath.Join(folder, name)
	log.Debug("resolved download path", "path", path)

	if _, statErr := os.Stat(path); statErr == nil {
		yes, err := s.gate.ConfirmOverwrite(ctx, s.overwriteTitle, s.overwriteDescription)
		if err != nil {
			return s.fail(log, fmt.Errorf("overwrite confirmation failed: %w", err))
		}
		if !yes {
			log.Info("user declined overwrite", "path", path)
			return s.cancel()
		}
	}

	s.notifyUpdate(req, model.DownloadStatusDownloading)
	if err := s.transfer(ctx, req.SourceURL, path, log); err != nil {
		return s.fail(log, err)
	}

	log.Info("download completed", "path", path)
	return model.DownloadStatusCompleted, nil
}

// transfer streams the body of url into path, emitting progress after every chunk
func (s *Service) transfer(ctx context.Context, url, path string, log *slog.Logger) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	// Transparent gzip would hide the content length.
	httpReq.Header.Set("Accept-Encoding", "identity")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("request failed: unexpected status %s", resp.Status)
	}
	if resp.ContentLength < 0 {
		return ErrUnknownSize
	}
	total := uint64(resp.ContentLength)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	loaded, err := s.copyWithProgress(file, resp.Body, total, log)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close file: %w", closeErr)
	}
	if err != nil {
		return err
	}

	if total == 0 && loaded == 0 {
		s.emitter.Emit(events.DownloadBack, model.NewDownloadProgress(0, 0))
	}
	return nil
}

// copyWithProgress writes body to file one chunk at a time
func (s *Service) copyWithProgress(file io.Writer, body io.Reader, total uint64, log *slog.Logger) (uint64, error) {
	buf := make([]byte, s.chunkSize)
	var loaded uint64

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				return loaded, fmt.Errorf("failed to write file: %w", err)
			}
			loaded += uint64(n)

			progress := model.NewDownloadProgress(loaded, total)
			log.Debug("chunk written", "loaded", loaded, "total", total, "percent", fmt.Sprintf("%.2f", progress.Percent()))
			s.emitter.Emit(events.DownloadBack, progress)
		}
		if readErr == io.EOF {
			return loaded, nil
		}
		if readErr != nil {
			return loaded, fmt.Errorf("failed to read response: %w", readErr)
		}
	}
}

// cancel reports a user-declined prompt; cancellation is not an error
func (s *Service) cancel() (model.DownloadStatus, error) {
	s.emitter.Emit(events.DownloadCancel, "")
	return model.DownloadStatusCancelled, nil
}

// fail reports err to the UI and returns it unchanged
func (s *Service) fail(log *slog.Logger, err error) (model.DownloadStatus, error) {
	log.Error("download failed", "error", err)
	s.emitter.Emit(events.DownloadError, err.Error())
	return model.DownloadStatusError, err
}

func (s *Service) begin(req model.DownloadRequest) {
	s.mu.Lock()
	s.active++
	s.mu.Unlock()
	s.notifyUpdate(req, model.DownloadStatusPending)
}

func (s *Service) finish(req model.DownloadRequest, status model.DownloadStatus) {
	s.mu.Lock()
	s.active--
	s.mu.Unlock()
	s.notifyUpdate(req, status)
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(req model.DownloadRequest, status model.DownloadStatus) {
	s.mu.Lock()
	callback := s.onUpdate
	s.mu.Unlock()

	if callback != nil {
		callback(req, status)
	}
}

// sanitizeFileName keeps the download inside the folder the user picked
func sanitizeFileName(name string) (string, error) {
	base := filepath.Base(filepath.Clean(name))
	if name == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return base, nil
}
