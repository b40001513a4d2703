package store

import (
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	if _, ok, err := s.Get("log_level"); err != nil || ok {
		t.Fatalf("Expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := SetAndPersist(s, "log_level", "debug"); err != nil {
		t.Fatalf("SetAndPersist failed: %v", err)
	}

	value, ok, err := s.Get("log_level")
	if err != nil || !ok {
		t.Fatalf("Expected key to exist, got ok=%v err=%v", ok, err)
	}
	if value != "debug" {
		t.Errorf("Expected 'debug', got '%s'", value)
	}

	if err := s.Set("log_level", "err"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, _, _ = s.Get("log_level")
	if value != "err" {
		t.Errorf("Expected overwritten value 'err', got '%s'", value)
	}

	if err := s.Set("empty", ""); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, ok, _ = s.Get("empty")
	if !ok || value != "" {
		t.Errorf("Expected empty string to be stored as present, got ok=%v value=%q", ok, value)
	}
}

func TestPreferencesStore(t *testing.T) {
	app := test.NewApp()
	s := NewPreferencesStore(app)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := SetAndPersist(s, "language", "zh"); err != nil {
		t.Fatalf("SetAndPersist failed: %v", err)
	}
	s.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get("language")
	if err != nil || !ok || value != "zh" {
		t.Errorf("Expected 'zh' after reopen, got %q ok=%v err=%v", value, ok, err)
	}
}
