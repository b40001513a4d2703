package download

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/renflow/renflow-desktop/internal/events"
	"github.com/renflow/renflow-desktop/internal/model"
)

// stubGate answers prompts without user interaction
type stubGate struct {
	folder     string
	pick       bool
	overwrite  bool
	pickErr    error
	pickCalls  int
	asks       int
	lastTitle  string
	lastPrompt string
}

func (g *stubGate) PickFolder(ctx context.Context) (string, bool, error) {
	g.pickCalls++
	return g.folder, g.pick, g.pickErr
}

func (g *stubGate) ConfirmOverwrite(ctx context.Context, title, description string) (bool, error) {
	g.asks++
	g.lastTitle = title
	g.lastPrompt = description
	return g.overwrite, nil
}

func newTestService(gate Gate) (*Service, *events.Recorder) {
	recorder := &events.Recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(gate, recorder, logger), recorder
}

func serveBytes(body []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write(body)
	}))
}

func TestNewService(t *testing.T) {
	service := NewService(&stubGate{}, nil, nil)

	if service.chunkSize != DefaultChunkSize {
		t.Errorf("Expected chunk size %d, got %d", DefaultChunkSize, service.chunkSize)
	}
	if service.emitter == nil {
		t.Error("Expected a non-nil emitter")
	}
	if service.ActiveCount() != 0 {
		t.Errorf("Expected no active downloads, got %d", service.ActiveCount())
	}
}

func TestDownload_CompletesWithProgressPerChunk(t *testing.T) {
	body := bytes.Repeat([]byte("x"), 10_000)
	server := serveBytes(body)
	defer server.Close()

	dir := t.TempDir()
	service, recorder := newTestService(&stubGate{folder: dir, pick: true})
	service.SetChunkSize(1024)

	status, err := service.Download(context.Background(), model.DownloadRequest{SourceURL: server.URL, FileName: "data.bin"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if status != model.DownloadStatusCompleted {
		t.Errorf("Expected status Completed, got %s", status)
	}

	written, err := os.ReadFile(filepath.Join(dir, "data.bin"))
	if err != nil {
		t.Fatalf("Expected file to exist: %v", err)
	}
	if !bytes.Equal(written, body) {
		t.Errorf("Expected %d bytes on disk, got %d", len(body), len(written))
	}

	progress := recorder.Named(events.DownloadBack)
	if len(progress) < 10 {
		t.Fatalf("Expected at least one progress event per 1KiB chunk, got %d", len(progress))
	}

	var previous uint64
	for i, p := range progress {
		current := p.(model.DownloadProgress)
		if !current.LengthComputable {
			t.Errorf("Event %d: expected lengthComputable", i)
		}
		if current.Total != uint64(len(body)) {
			t.Errorf("Event %d: expected total %d, got %d", i, len(body), current.Total)
		}
		if current.Loaded <= previous {
			t.Errorf("Event %d: expected loaded to grow, got %d after %d", i, current.Loaded, previous)
		}
		previous = current.Loaded
	}

	last := progress[len(progress)-1].(model.DownloadProgress)
	if last.Loaded != last.Total || last.Percent() != 100 {
		t.Errorf("Expected final event at 100%%, got %d/%d", last.Loaded, last.Total)
	}

	if len(recorder.Named(events.DownloadCancel)) != 0 || len(recorder.Named(events.DownloadError)) != 0 {
		t.Error("Expected no cancel or error events on success")
	}
}

func TestDownload_FolderDeclined(t *testing.T) {
	requested := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer server.Close()

	dir := t.TempDir()
	service, recorder := newTestService(&stubGate{folder: dir, pick: false})

	status, err := service.Download(context.Background(), model.DownloadRequest{SourceURL: server.URL, FileName: "a.txt"})
	if err != nil {
		t.Fatalf("Expected cancellation to succeed, got %v", err)
	}
	if status != model.DownloadStatusCancelled {
		t.Errorf("Expected status Cancelled, got %s", status)
	}

	if n := len(recorder.Named(events.DownloadCancel)); n != 1 {
		t.Errorf("Expected exactly one cancel event, got %d", n)
	}
	if n := len(recorder.Named(events.DownloadBack)); n != 0 {
		t.Errorf("Expected no progress events, got %d", n)
	}
	if requested {
		t.Error("Expected no network request after cancellation")
	}
	if _, err := os.Stat(filepath.Join(dir, "a.txt")); !os.IsNotExist(err) {
		t.Error("Expected no file to be created")
	}
}

func TestDownload_OverwriteDeclinedTwiceLeavesFileUntouched(t *testing.T) {
	server := serveBytes([]byte("new content"))
	defer server.Close()

	dir := t.TempDir()
	target := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(target, []byte("original"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	gate := &stubGate{folder: dir, pick: true, overwrite: false}
	service, recorder := newTestService(gate)
	service.SetOverwriteTexts("文件已存在", "文件已存在，是否覆盖？")

	for i := 0; i < 2; i++ {
		status, err := service.Download(context.Background(), model.DownloadRequest{SourceURL: server.URL, FileName: "keep.txt"})
		if err != nil {
			t.Fatalf("Attempt %d: expected no error, got %v", i, err)
		}
		if status != model.DownloadStatusCancelled {
			t.Errorf("Attempt %d: expected Cancelled, got %s", i, status)
		}
	}

	content, _ := os.ReadFile(target)
	if string(content) != "original" {
		t.Errorf("Expected file to be untouched, got %q", string(content))
	}
	if gate.asks != 2 {
		t.Errorf("Expected two overwrite prompts, got %d", gate.asks)
	}
	if gate.lastTitle != "文件已存在" {
		t.Errorf("Expected localized prompt title, got %q", gate.lastTitle)
	}
	if n := len(recorder.Named(events.DownloadCancel)); n != 2 {
		t.Errorf("Expected two cancel events, got %d", n)
	}
	if n := len(recorder.Named(events.DownloadBack)); n != 0 {
		t.Errorf("Expected no progress events, got %d", n)
	}
}

func TestDownload_OverwriteAccepted(t *testing.T) {
	server := serveBytes([]byte("fresh"))
	defer server.Close()

	dir := t.TempDir()
	target := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(target, []byte("stale content that is longer"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	service, _ := newTestService(&stubGate{folder: dir, pick: true, overwrite: true})

	if _, err := service.Download(context.Background(), model.DownloadRequest{SourceURL: server.URL, FileName: "file.txt"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	content, _ := os.ReadFile(target)
	if string(content) != "fresh" {
		t.Errorf("Expected file to be replaced, got %q", string(content))
	}
}

func TestDownload_MissingContentLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flushing before the body forces chunked encoding.
		w.(http.Flusher).Flush()
		w.Write([]byte("streamed without a length"))
	}))
	defer server.Close()

	dir := t.TempDir()
	service, recorder := newTestService(&stubGate{folder: dir, pick: true})

	status, err := service.Download(context.Background(), model.DownloadRequest{SourceURL: server.URL, FileName: "x.bin"})
	if !errors.Is(err, ErrUnknownSize) {
		t.Fatalf("Expected ErrUnknownSize, got %v", err)
	}
	if status != model.DownloadStatusError {
		t.Errorf("Expected status Error, got %s", status)
	}

	if n := len(recorder.Named(events.DownloadBack)); n != 0 {
		t.Errorf("Expected no progress events, got %d", n)
	}
	errs := recorder.Named(events.DownloadError)
	if len(errs) != 1 || errs[0] != err.Error() {
		t.Errorf("Expected one error event carrying %q, got %v", err.Error(), errs)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "x.bin")); !os.IsNotExist(statErr) {
		t.Error("Expected no file when the size is unknown")
	}
}

func TestDownload_TruncatedBodyKeepsPartialFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	dir := t.TempDir()
	service, recorder := newTestService(&stubGate{folder: dir, pick: true})

	status, err := service.Download(context.Background(), model.DownloadRequest{SourceURL: server.URL, FileName: "partial.bin"})
	if err == nil {
		t.Fatal("Expected an error for a truncated body")
	}
	if status != model.DownloadStatusError {
		t.Errorf("Expected status Error, got %s", status)
	}

	errs := recorder.Named(events.DownloadError)
	if len(errs) != 1 || errs[0] != err.Error() {
		t.Errorf("Expected the returned error text as the event payload, got %v", errs)
	}

	info, statErr := os.Stat(filepath.Join(dir, "partial.bin"))
	if statErr != nil {
		t.Fatalf("Expected partial file to remain: %v", statErr)
	}
	if info.Size() != 10 {
		t.Errorf("Expected 10 bytes on disk, got %d", info.Size())
	}
}

func TestDownload_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	service, recorder := newTestService(&stubGate{folder: dir, pick: true})

	_, err := service.Download(context.Background(), model.DownloadRequest{SourceURL: server.URL, FileName: "page.html"})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("Expected a 404 error, got %v", err)
	}
	if len(recorder.Named(events.DownloadError)) != 1 {
		t.Error("Expected one error event")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "page.html")); !os.IsNotExist(statErr) {
		t.Error("Expected error pages not to be written")
	}
}

func TestDownload_ZeroLengthBody(t *testing.T) {
	server := serveBytes(nil)
	defer server.Close()

	dir := t.TempDir()
	service, recorder := newTestService(&stubGate{folder: dir, pick: true})

	status, err := service.Download(context.Background(), model.DownloadRequest{SourceURL: server.URL, FileName: "empty"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if status != model.DownloadStatusCompleted {
		t.Errorf("Expected Completed, got %s", status)
	}

	progress := recorder.Named(events.DownloadBack)
	if len(progress) != 1 {
		t.Fatalf("Expected one completion event, got %d", len(progress))
	}
	p := progress[0].(model.DownloadProgress)
	if p.Loaded != 0 || p.Total != 0 || p.Percent() != 0 {
		t.Errorf("Expected {0,0} at 0%%, got %+v", p)
	}

	info, statErr := os.Stat(filepath.Join(dir, "empty"))
	if statErr != nil || info.Size() != 0 {
		t.Errorf("Expected an empty file, got %v (err=%v)", info, statErr)
	}
}

func TestDownload_UnreachableHost(t *testing.T) {
	server := serveBytes([]byte("x"))
	url := server.URL
	server.Close()

	service, recorder := newTestService(&stubGate{folder: t.TempDir(), pick: true})

	_, err := service.Download(context.Background(), model.DownloadRequest{SourceURL: url, FileName: "x"})
	if err == nil || !strings.HasPrefix(err.Error(), "request failed") {
		t.Fatalf("Expected a request failure, got %v", err)
	}
	if len(recorder.Named(events.DownloadError)) != 1 {
		t.Error("Expected one error event")
	}
}

func TestDownload_FolderPickerError(t *testing.T) {
	gate := &stubGate{pickErr: context.Canceled}
	service, recorder := newTestService(gate)

	status, err := service.Download(context.Background(), model.DownloadRequest{SourceURL: "http://unused", FileName: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected wrapped context.Canceled, got %v", err)
	}
	if status != model.DownloadStatusError {
		t.Errorf("Expected status Error, got %s", status)
	}
	if len(recorder.Named(events.DownloadError)) != 1 {
		t.Error("Expected one error event")
	}
}

func TestDownload_InvalidFileName(t *testing.T) {
	gate := &stubGate{folder: t.TempDir(), pick: true}
	service, _ := newTestService(gate)

	for _, name := range []string{"", ".", ".."} {
		_, err := service.Download(context.Background(), model.DownloadRequest{SourceURL: "http://unused", FileName: name})
		if !errors.Is(err, ErrInvalidFileName) {
			t.Errorf("Expected ErrInvalidFileName for %q, got %v", name, err)
		}
	}
	if gate.pickCalls != 0 {
		t.Errorf("Expected no folder prompt for invalid names, got %d", gate.pickCalls)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"nested/dir/file.zip", "file.zip"},
	}

	for _, test := range tests {
		result, err := sanitizeFileName(test.input)
		if err != nil {
			t.Errorf("sanitizeFileName(%q) returned error %v", test.input, err)
			continue
		}
		if result != test.expected {
			t.Errorf("sanitizeFileName(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestUpdateCallback(t *testing.T) {
	server := serveBytes([]byte("abc"))
	defer server.Close()

	service, _ := newTestService(&stubGate{folder: t.TempDir(), pick: true})

	var mu sync.Mutex
	var statuses []model.DownloadStatus
	service.SetUpdateCallback(func(req model.DownloadRequest, status model.DownloadStatus) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, status)
	})

	if _, err := service.Download(context.Background(), model.DownloadRequest{SourceURL: server.URL, FileName: "abc.txt"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := []model.DownloadStatus{
		model.DownloadStatusPending,
		model.DownloadStatusDownloading,
		model.DownloadStatusCompleted,
	}
	if len(statuses) != len(expected) {
		t.Fatalf("Expected statuses %v, got %v", expected, statuses)
	}
	for i := range expected {
		if statuses[i] != expected[i] {
			t.Errorf("Status %d: expected %s, got %s", i, expected[i], statuses[i])
		}
	}
	if service.ActiveCount() != 0 {
		t.Errorf("Expected no active downloads after completion, got %d", service.ActiveCount())
	}
}
