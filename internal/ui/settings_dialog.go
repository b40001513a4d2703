package ui

import (
	"log/slog"
	"slices"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/renflow/renflow-desktop/internal/config"
	"github.com/renflow/renflow-desktop/internal/logging"
)

// SettingsDialog edits the settings the backend owns
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onLogLevel   func(slog.Level)
	log          *slog.Logger

	// language display name -> code
	languageCodes map[string]string

	downloadDirEntry *widget.Entry
	logLevelSelect   *widget.Select
	languageSelect   *widget.Select
}

// NewSettingsDialog creates the dialog. onLogLevel is called after a new level is saved.
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window, onLogLevel func(slog.Level), logger *slog.Logger) *SettingsDialog {
	sd := &SettingsDialog{
		settings:      settings,
		localization:  localization,
		window:        window,
		onLogLevel:    onLogLevel,
		log:           logging.Component(logger, "settings_dialog"),
		languageCodes: make(map[string]string),
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	t := sd.localization.GetText

	sd.downloadDirEntry = widget.NewEntry()
	browseDirBtn := widget.NewButton(t(KeyBrowse), sd.onBrowseDirectory)
	downloadDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.downloadDirEntry)

	sd.logLevelSelect = widget.NewSelect(sd.settings.GetLogLevelOptions(), nil)

	var languageNames []string
	for code, name := range sd.settings.GetLanguageOptions() {
		sd.languageCodes[name] = code
		languageNames = append(languageNames, name)
	}
	slices.Sort(languageNames)
	sd.languageSelect = widget.NewSelect(languageNames, nil)

	form := widget.NewForm(
		widget.NewFormItem(t(KeyDownloadDirectory), downloadDirRow),
		widget.NewFormItem(t(KeyLogLevel), sd.logLevelSelect),
		widget.NewFormItem(t(KeyLanguage), sd.languageSelect),
	)

	sd.dialog = dialog.NewCustomConfirm(t(KeySettings), t(KeySave), t(KeyCancel), form, sd.onSave, sd.window)
	sd.dialog.Resize(fyne.NewSize(460, 260))
}

func (sd *SettingsDialog) loadCurrentSettings() {
	sd.downloadDirEntry.SetText(sd.settings.GetDownloadDirectory())
	sd.logLevelSelect.SetSelected(sd.settings.GetLogLevel())

	current := sd.settings.GetLanguage()
	for name, code := range sd.languageCodes {
		if code == current {
			sd.languageSelect.SetSelected(name)
		}
	}
}

func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.downloadDirEntry.SetText(uri.Path())
	}, sd.window)
}

func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}
	if err := sd.save(); err != nil {
		sd.log.Error("failed to save settings", "error", err)
		dialog.ShowError(err, sd.window)
		return
	}
	dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeySettingsSaved), sd.window)
}

// save writes the form values; empty fields leave the stored value alone
func (sd *SettingsDialog) save() error {
	if dir := sd.downloadDirEntry.Text; dir != "" {
		if err := sd.settings.SetDownloadDirectory(dir); err != nil {
			return err
		}
	}

	if level := sd.logLevelSelect.Selected; level != "" && level != sd.settings.GetLogLevel() {
		if err := sd.settings.SetLogLevel(level); err != nil {
			return err
		}
		if sd.onLogLevel != nil {
			sd.onLogLevel(sd.settings.GetSlogLevel())
		}
	}

	if code, ok := sd.languageCodes[sd.languageSelect.Selected]; ok {
		if err := sd.settings.SetLanguage(code); err != nil {
			return err
		}
	}
	return nil
}
