package ui

import (
	"log/slog"
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"

	"github.com/renflow/renflow-desktop/internal/config"
	"github.com/renflow/renflow-desktop/internal/store"
)

func newTestSettingsDialog(t *testing.T, onLogLevel func(slog.Level)) (*SettingsDialog, *config.Settings) {
	t.Helper()
	app := test.NewApp()
	settings := config.NewSettings(store.NewPreferencesStore(app), nil)
	sd := NewSettingsDialog(settings, NewLocalization(), test.NewTempWindow(t, nil), onLogLevel, nil)
	sd.loadCurrentSettings()
	return sd, settings
}

func TestSettingsDialogLoadsDefaults(t *testing.T) {
	sd, _ := newTestSettingsDialog(t, nil)

	if sd.logLevelSelect.Selected != config.DefaultLogLevel {
		t.Errorf("Expected log level %s, got %s", config.DefaultLogLevel, sd.logLevelSelect.Selected)
	}
	if code := sd.languageCodes[sd.languageSelect.Selected]; code != config.DefaultLanguage {
		t.Errorf("Expected language %s, got %s", config.DefaultLanguage, code)
	}
	if sd.downloadDirEntry.Text != "" {
		t.Errorf("Expected empty download folder, got %q", sd.downloadDirEntry.Text)
	}
}

func TestSettingsDialogSave(t *testing.T) {
	var applied []slog.Level
	sd, settings := newTestSettingsDialog(t, func(level slog.Level) {
		applied = append(applied, level)
	})

	dir := t.TempDir()
	sd.downloadDirEntry.SetText(dir)
	sd.logLevelSelect.SetSelected("debug")
	sd.languageSelect.SetSelected("简体中文")

	if err := sd.save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if got := settings.GetDownloadDirectory(); got != dir {
		t.Errorf("Expected download folder %s, got %s", dir, got)
	}
	if got := settings.GetLogLevel(); got != "debug" {
		t.Errorf("Expected log level debug, got %s", got)
	}
	if got := settings.GetLanguage(); got != "zh" {
		t.Errorf("Expected language zh, got %s", got)
	}
	if len(applied) != 1 || applied[0] != slog.LevelDebug {
		t.Errorf("Expected one Debug level change, got %v", applied)
	}

	// Saving again without changes does not re-apply the level
	if err := sd.save(); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if len(applied) != 1 {
		t.Errorf("Expected level callback once, got %d calls", len(applied))
	}
}

func TestCompactTheme(t *testing.T) {
	th := NewCompactTheme()

	if th.Color(theme.ColorNamePrimary, theme.VariantLight) != accentColor {
		t.Error("Expected primary colour to be the accent colour")
	}
	if th.Size(theme.SizeNamePadding) != 3 {
		t.Errorf("Expected compact padding 3, got %v", th.Size(theme.SizeNamePadding))
	}
	if th.Size(theme.SizeNameScrollBar) != theme.DefaultTheme().Size(theme.SizeNameScrollBar) {
		t.Error("Expected unlisted sizes to follow the default theme")
	}
}
