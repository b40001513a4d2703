package ui

// Package ui contains the Fyne side of the desktop shell: the status window,
// its settings dialog, the native dialogs that gate downloads, and window chrome
// commands forwarded from the web UI. All UI strings are localized via Localization.
