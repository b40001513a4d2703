package ui

import (
	"errors"
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/renflow/renflow-desktop/internal/config"
)

// Window chrome operations forwarded from the web UI
const (
	WindowShow           = "show"
	WindowHide           = "hide"
	WindowClose          = "close"
	WindowFocus          = "focus"
	WindowMaximize       = "maximize"
	WindowUnmaximize     = "unmaximize"
	WindowToggleMaximize = "toggle_maximize"
	WindowIsMaximized    = "is_maximized"
	WindowQuit           = "quit"
)

// ErrUnsupportedWindowOp is returned for operations Fyne cannot perform
var ErrUnsupportedWindowOp = errors.New("unsupported window operation")

// Window sizing
const (
	WindowWidth  = 480
	WindowHeight = 220
)

// Window is the native status window of the backend
type Window struct {
	app          fyne.App
	window       fyne.Window
	localization *Localization
	onSettings   func()
}

// NewWindow builds the status window. openUI is invoked by the "Open UI" button.
func NewWindow(app fyne.App, localization *Localization, runtime config.Runtime, openUI func()) *Window {
	w := &Window{
		app:          app,
		window:       app.NewWindow(fmt.Sprintf("%s %s", localization.GetText(KeyAppTitle), runtime.Version)),
		localization: localization,
	}

	bridgeLabel := widget.NewLabel(fmt.Sprintf("%s: %s", localization.GetText(KeyBridgeListening), runtime.BridgeAddr))
	proxyLabel := widget.NewLabel(fmt.Sprintf("%s: %s", localization.GetText(KeyProxyListening), strconv.Itoa(int(runtime.ProxyPort))))

	openBtn := widget.NewButton(localization.GetText(KeyOpenUI), func() {
		if openUI != nil {
			openUI()
		}
	})
	openBtn.Importance = widget.HighImportance
	settingsBtn := widget.NewButton(localization.GetText(KeySettings), func() {
		if w.onSettings != nil {
			w.onSettings()
		}
	})
	hideBtn := widget.NewButton(localization.GetText(KeyHide), w.window.Hide)
	quitBtn := widget.NewButton(localization.GetText(KeyQuit), app.Quit)

	w.window.SetContent(container.NewVBox(
		bridgeLabel,
		proxyLabel,
		container.NewGridWithColumns(4, openBtn, settingsBtn, hideBtn, quitBtn),
	))
	w.window.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	// Closing the window only hides it; the backend keeps serving the UI.
	w.window.SetCloseIntercept(w.window.Hide)
	return w
}

// Fyne returns the underlying Fyne window, used as the parent of dialogs
func (w *Window) Fyne() fyne.Window {
	return w.window
}

// SetOnSettings sets the action of the Settings button
func (w *Window) SetOnSettings(fn func()) {
	w.onSettings = fn
}

// ShowAndRun shows the window and runs the Fyne event loop until quit
func (w *Window) ShowAndRun() {
	w.window.ShowAndRun()
}

// Apply performs a window chrome operation. Only is_maximized returns a value.
func (w *Window) Apply(op string) (any, error) {
	var result any
	var err error

	fyne.DoAndWait(func() {
		switch op {
		case WindowShow:
			w.window.Show()
		case WindowHide, WindowClose:
			w.window.Hide()
		case WindowFocus:
			w.window.Show()
			w.window.RequestFocus()
		case WindowMaximize:
			w.window.SetFullScreen(true)
		case WindowUnmaximize:
			w.window.SetFullScreen(false)
		case WindowToggleMaximize:
			w.window.SetFullScreen(!w.window.FullScreen())
		case WindowIsMaximized:
			result = w.window.FullScreen()
		case WindowQuit:
			w.app.Quit()
		default:
			err = fmt.Errorf("%w: %s", ErrUnsupportedWindowOp, op)
		}
	})

	return result, err
}
