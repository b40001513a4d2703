// Package store persists string settings for the UI layer. Two backends exist:
// Fyne preferences (the default) and a SQLite file.
package store

import "fmt"

// Backend names accepted in configuration
const (
	BackendPreferences = "preferences"
	BackendSQLite      = "sqlite"
)

// Store is a persistent string key/value store
type Store interface {
	// Get returns the value and whether the key was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Persist flushes pending writes to durable storage.
	Persist() error
	Close() error
}

// SetAndPersist writes a value and flushes it in one step
func SetAndPersist(s Store, key, value string) error {
	if err := s.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if err := s.Persist(); err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}
	return nil
}
