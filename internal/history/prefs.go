package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// PrefsStore persists export preferences as a single JSON file.
type PrefsStore struct {
	path string
	mu   sync.Mutex
}

func NewPrefsStore(path string) *PrefsStore {
	return &PrefsStore{path: path}
}

// Load returns the saved preferences merged over the defaults. A missing
// file yields defaults; an unreadable one is logged and also yields defaults.
func (s *PrefsStore) Load() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := DefaultPrefs()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("reading export prefs", "path", s.path, "err", err)
		}
		return p
	}

	var saved Prefs
	if err := json.Unmarshal(data, &saved); err != nil {
		slog.Error("failed to parse export prefs", "path", s.path, "err", err)
		return p
	}
	for _, c := range Columns {
		if v, ok := saved.Columns[c]; ok {
			p.Columns[c] = v
		}
	}
	p.DateRange = saved.DateRange
	return p
}

// Save writes p through a temp file and rename.
func (s *PrefsStore) Save(p Prefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating prefs dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing export prefs: %w", err)
	}
	return os.Rename(tmp, s.path)
}
