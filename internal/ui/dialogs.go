package ui

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"github.com/renflow/renflow-desktop/internal/logging"
	"github.com/renflow/renflow-desktop/internal/platform"
)

// FolderMemory remembers where the last download went
type FolderMemory interface {
	GetDownloadDirectory() string
	SetDownloadDirectory(dir string) error
}

type folderResult struct {
	path string
	ok   bool
	err  error
}

// DialogGate asks the user with native Fyne dialogs parented to the status window.
// Both prompts block the calling goroutine until the user answers or ctx ends.
type DialogGate struct {
	window       fyne.Window
	localization *Localization
	memory       FolderMemory
	log          *slog.Logger
}

// NewDialogGate creates a gate whose dialogs are parented to window.
// memory may be nil.
func NewDialogGate(window fyne.Window, localization *Localization, memory FolderMemory, logger *slog.Logger) *DialogGate {
	return &DialogGate{
		window:       window,
		localization: localization,
		memory:       memory,
		log:          logging.Component(logger, "gate"),
	}
}

// PickFolder shows a folder picker starting at the last used folder
func (g *DialogGate) PickFolder(ctx context.Context) (string, bool, error) {
	result := make(chan folderResult, 1)

	var d *dialog.FileDialog
	fyne.Do(func() {
		g.bringToFront()
		d = dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil {
				result <- folderResult{err: err}
				return
			}
			if uri == nil {
				result <- folderResult{}
				return
			}
			result <- folderResult{path: uri.Path(), ok: true}
		}, g.window)
		if start := g.startLocation(); start != nil {
			d.SetLocation(start)
		}
		d.Show()
	})

	select {
	case r := <-result:
		if r.ok && g.memory != nil {
			if err := g.memory.SetDownloadDirectory(r.path); err != nil {
				g.log.Warn("failed to remember download folder", "error", err)
			}
		}
		return r.path, r.ok, r.err
	case <-ctx.Done():
		fyne.Do(func() { d.Hide() })
		return "", false, ctx.Err()
	}
}

// ConfirmOverwrite shows a yes/no warning dialog
func (g *DialogGate) ConfirmOverwrite(ctx context.Context, title, description string) (bool, error) {
	result := make(chan bool, 1)

	var d *dialog.ConfirmDialog
	fyne.Do(func() {
		g.bringToFront()
		d = dialog.NewConfirm(title, description, func(yes bool) {
			result <- yes
		}, g.window)
		d.Show()
	})

	select {
	case yes := <-result:
		return yes, nil
	case <-ctx.Done():
		fyne.Do(func() { d.Hide() })
		return false, ctx.Err()
	}
}

// OverwriteTexts returns the localized title and description of the overwrite prompt
func (g *DialogGate) OverwriteTexts() (string, string) {
	return g.localization.GetText(KeyFileExistsTitle), g.localization.GetText(KeyFileExistsMessage)
}

// bringToFront shows the window dialogs attach to; it may have been hidden on close
func (g *DialogGate) bringToFront() {
	g.window.Show()
	g.window.RequestFocus()
}

// startLocation resolves the remembered folder, or the user's Downloads folder,
// to a listable URI if it exists
func (g *DialogGate) startLocation() fyne.ListableURI {
	var dir string
	if g.memory != nil {
		dir = g.memory.GetDownloadDirectory()
	}
	if dir == "" {
		downloads, err := platform.GetHomeDownloadsDir()
		if err != nil {
			return nil
		}
		dir = downloads
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		return nil
	}
	return lister
}
