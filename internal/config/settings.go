package config

import (
	"log/slog"

	"github.com/renflow/renflow-desktop/internal/logging"
	"github.com/renflow/renflow-desktop/internal/store"
)

// Settings keys shared with the UI layer
const (
	KeyLogLevel    = "log_level"
	KeyLanguage    = "app_language"
	KeyDownloadDir = "download_directory"
)

// Default values
const (
	DefaultLogLevel = logging.LevelInfo
	DefaultLanguage = "system"
)

// Settings reads typed values out of the key/value store
type Settings struct {
	store store.Store
	log   *slog.Logger
}

// NewSettings creates a new settings manager
func NewSettings(s store.Store, logger *slog.Logger) *Settings {
	return &Settings{store: s, log: logging.Component(logger, "settings")}
}

// Store returns the underlying key/value store
func (s *Settings) Store() store.Store {
	return s.store
}

// stringWithFallback returns the stored value or fallback when absent or unreadable
func (s *Settings) stringWithFallback(key, fallback string) string {
	value, ok, err := s.store.Get(key)
	if err != nil {
		s.log.Warn("failed to read setting", "key", key, "error", err)
		return fallback
	}
	if !ok || value == "" {
		return fallback
	}
	return value
}

// GetLogLevel returns the configured log_level string
func (s *Settings) GetLogLevel() string {
	return s.stringWithFallback(KeyLogLevel, DefaultLogLevel)
}

// GetSlogLevel returns the configured level as a slog level
func (s *Settings) GetSlogLevel() slog.Level {
	return logging.ParseLevel(s.GetLogLevel())
}

// SetLogLevel stores a log_level value
func (s *Settings) SetLogLevel(level string) error {
	return store.SetAndPersist(s.store, KeyLogLevel, level)
}

// GetLogLevelOptions returns the accepted log_level values in display order
func (s *Settings) GetLogLevelOptions() []string {
	return []string{logging.LevelErr, logging.LevelInfo, logging.LevelDebug, logging.LevelAll}
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	return s.stringWithFallback(KeyLanguage, DefaultLanguage)
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) error {
	return store.SetAndPersist(s.store, KeyLanguage, lang)
}

// GetDownloadDirectory returns the folder the last download went to, or ""
func (s *Settings) GetDownloadDirectory() string {
	return s.stringWithFallback(KeyDownloadDir, "")
}

// SetDownloadDirectory remembers the folder of the last download
func (s *Settings) SetDownloadDirectory(dir string) error {
	return store.SetAndPersist(s.store, KeyDownloadDir, dir)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"zh":     "简体中文",
	}
}
