// Package storage persists application state as three independent JSON
// documents in the user config directory: the ordered timer list, the
// pending worklog list, and the settings object. Every write replaces the
// whole file; reads of missing or corrupt files degrade to empty defaults
// so a damaged file never keeps the app from starting.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sadopc/jirawatch/internal/timer"
	"github.com/sadopc/jirawatch/internal/worklog"
)

const (
	appDirName       = "jirawatch"
	timersFile       = "timers.json"
	pendingFile      = "pending_worklogs.json"
	settingsFile     = "settings.json"
	settingsFileMode = 0o600 // holds the API token
	stateFileMode    = 0o644
)

// Settings is the connection and UI configuration document.
type Settings struct {
	BaseURL         string            `json:"base_url"`
	Email           string            `json:"email"`
	APIToken        string            `json:"api_token"`
	DefaultFilterID string            `json:"default_filter_id"`
	FilterNames     map[string]string `json:"filter_names,omitempty"`
	DarkMode        bool              `json:"dark_mode"`
}

// Configured reports whether the connection fields are all present.
func (s Settings) Configured() bool {
	return s.BaseURL != "" && s.Email != "" && s.APIToken != ""
}

// Dir is a storage directory for the three state documents.
type Dir struct {
	path string
}

// DefaultDir returns the per-user config directory, creating it if needed.
func DefaultDir() (*Dir, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	return Open(filepath.Join(cfg, appDirName))
}

// Open ensures path exists and returns it as a storage directory.
func Open(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory location.
func (d *Dir) Path() string { return d.path }

// LoadTimers reads the ordered timer list. Malformed records are skipped;
// a missing or unreadable file yields an empty list.
func (d *Dir) LoadTimers() []timer.State {
	var raw []json.RawMessage
	if !d.loadDocument(timersFile, &raw) {
		return nil
	}
	states := make([]timer.State, 0, len(raw))
	for _, record := range raw {
		var s timer.State
		if err := json.Unmarshal(record, &s); err != nil {
			slog.Warn("skipping malformed timer record", "error", err)
			continue
		}
		states = append(states, s)
	}
	return states
}

// SaveTimers replaces the timer document.
func (d *Dir) SaveTimers(states []timer.State) error {
	if states == nil {
		states = []timer.State{}
	}
	return d.saveDocument(timersFile, states, stateFileMode)
}

// LoadPending reads the pending worklog list, skipping malformed records.
func (d *Dir) LoadPending() []worklog.Pending {
	var raw []json.RawMessage
	if !d.loadDocument(pendingFile, &raw) {
		return nil
	}
	entries := make([]worklog.Pending, 0, len(raw))
	for _, record := range raw {
		var p worklog.Pending
		if err := json.Unmarshal(record, &p); err != nil {
			slog.Warn("skipping malformed pending worklog", "error", err)
			continue
		}
		if p.IssueKey == "" || p.Seconds <= 0 {
			slog.Warn("skipping invalid pending worklog", "issue", p.IssueKey)
			continue
		}
		entries = append(entries, p)
	}
	return entries
}

// SavePending replaces the pending worklog document.
func (d *Dir) SavePending(entries []worklog.Pending) error {
	if entries == nil {
		entries = []worklog.Pending{}
	}
	return d.saveDocument(pendingFile, entries, stateFileMode)
}

// LoadSettings reads the settings document, degrading to defaults.
func (d *Dir) LoadSettings() Settings {
	var s Settings
	if !d.loadDocument(settingsFile, &s) {
		return Settings{}
	}
	return s
}

// SaveSettings replaces the settings document.
func (d *Dir) SaveSettings(s Settings) error {
	return d.saveDocument(settingsFile, s, settingsFileMode)
}

// Reset deletes every state document.
func (d *Dir) Reset() error {
	var firstErr error
	for _, name := range []string{timersFile, pendingFile, settingsFile} {
		err := os.Remove(filepath.Join(d.path, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (d *Dir) loadDocument(name string, dest any) bool {
	data, err := os.ReadFile(filepath.Join(d.path, name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("read state document failed", "file", name, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		slog.Warn("corrupt state document, using defaults", "file", name, "error", err)
		return false
	}
	return true
}

func (d *Dir) saveDocument(name string, doc any, mode os.FileMode) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(d.path, name), data, mode); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
