package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore(t *testing.T) {
	t.Run("missing file is an empty store", func(t *testing.T) {
		s, err := Open(filepath.Join(t.TempDir(), "prefs.json"))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if !s.GetBool(KeySidebarOpen, true) {
			t.Fatal("fallback should be returned for an absent key")
		}
		if s.GetBool(KeyDarkMode, false) {
			t.Fatal("fallback should be returned for an absent key")
		}
	})

	t.Run("writes persist across reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prefs.json")
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if err := s.SetBool(KeySidebarOpen, true); err != nil {
			t.Fatalf("SetBool() error = %v", err)
		}
		if err := s.SetBool(KeySettingsDropdown, false); err != nil {
			t.Fatalf("SetBool() error = %v", err)
		}

		reopened, err := Open(path)
		if err != nil {
			t.Fatalf("Open() after write error = %v", err)
		}
		if !reopened.GetBool(KeySidebarOpen, false) {
			t.Fatal("sidebarOpen should persist as true")
		}
		if reopened.GetBool(KeySettingsDropdown, true) {
			t.Fatal("settingsDropdown should persist as false")
		}
	})

	t.Run("each write fully replaces the prior value", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prefs.json")
		s, _ := Open(path)
		if err := s.SetBool(KeyDarkMode, true); err != nil {
			t.Fatalf("SetBool() error = %v", err)
		}
		if err := s.SetBool(KeyDarkMode, false); err != nil {
			t.Fatalf("SetBool() error = %v", err)
		}
		reopened, _ := Open(path)
		if reopened.GetBool(KeyDarkMode, true) {
			t.Fatal("last write should win")
		}
	})

	t.Run("unparseable value falls back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prefs.json")
		if err := os.WriteFile(path, []byte(`{"sidebarOpen":"maybe"}`), 0o644); err != nil {
			t.Fatal(err)
		}
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if !s.GetBool(KeySidebarOpen, true) {
			t.Fatal("garbage value should fall back")
		}
	})
}
