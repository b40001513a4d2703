package store

import "fyne.io/fyne/v2"

// unsetSentinel cannot be produced by the UI layer, so it marks an absent key
const unsetSentinel = "\x00renflow:unset\x00"

// PreferencesStore keeps settings in the Fyne application preferences
type PreferencesStore struct {
	prefs fyne.Preferences
}

// NewPreferencesStore wraps the preferences of app
func NewPreferencesStore(app fyne.App) *PreferencesStore {
	return &PreferencesStore{prefs: app.Preferences()}
}

// Get returns the stored string for key
func (s *PreferencesStore) Get(key string) (string, bool, error) {
	value := s.prefs.StringWithFallback(key, unsetSentinel)
	if value == unsetSentinel {
		return "", false, nil
	}
	return value, true, nil
}

// Set stores value under key
func (s *PreferencesStore) Set(key, value string) error {
	s.prefs.SetString(key, value)
	return nil
}

// Persist is a no-op: Fyne writes preferences to disk on change
func (s *PreferencesStore) Persist() error {
	return nil
}

// Close is a no-op
func (s *PreferencesStore) Close() error {
	return nil
}
