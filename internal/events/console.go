package events

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/renflow/renflow-desktop/internal/model"
)

// Console renders download progress events as a terminal progress bar
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	bar   *progressbar.ProgressBar
	total uint64
}

// NewConsole creates a console emitter writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// IsTerminal reports whether f is attached to an interactive terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Emit updates or tears down the current bar. Non-download events are ignored.
func (c *Console) Emit(event string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch event {
	case DownloadBack:
		progress, ok := payload.(model.DownloadProgress)
		if !ok || progress.Total == 0 {
			return
		}
		if c.bar == nil || c.total != progress.Total {
			c.reset()
			c.bar = progressbar.NewOptions64(int64(progress.Total),
				progressbar.OptionSetWriter(c.out),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetDescription("downloading"),
				progressbar.OptionClearOnFinish(),
			)
			c.total = progress.Total
		}
		_ = c.bar.Set64(int64(progress.Loaded))
		if progress.IsComplete() {
			_ = c.bar.Finish()
			c.bar = nil
			c.total = 0
		}
	case DownloadCancel, DownloadError:
		c.reset()
	}
}

// reset abandons the current bar, if any
func (c *Console) reset() {
	if c.bar != nil {
		_ = c.bar.Exit()
	}
	c.bar = nil
	c.total = 0
}

// active reports whether a bar is currently shown
func (c *Console) active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bar != nil
}
