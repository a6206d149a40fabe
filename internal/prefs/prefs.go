// Package prefs is a small file-backed store for per-user UI
// preferences (sidebar open, settings dropdown, dark mode). Values are
// string-encoded booleans loaded once at construction and written on
// every change; each write fully replaces the prior file, so no
// versioning or migration is needed.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Preference keys.
const (
	KeySidebarOpen      = "sidebarOpen"
	KeySettingsDropdown = "settingsDropdown"
	KeyDarkMode         = "darkMode"
)

// Store owns load-at-start/save-on-change semantics for UI preferences.
// It is meant to be constructed once and passed to the views that need
// it rather than looked up ambiently.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// Open loads the preference file at path, creating parent directories
// on the first save. A missing file is an empty store, not an error.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, err
	}
	return s, nil
}

// GetBool reads a boolean preference, returning fallback when the key
// is absent or not a parseable bool.
func (s *Store) GetBool(key string, fallback bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.values[key]
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// SetBool writes a boolean preference and persists the whole store.
func (s *Store) SetBool(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = strconv.FormatBool(value)
	return s.save()
}

func (s *Store) save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
