package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sadopc/jirawatch/internal/timer"
	"github.com/sadopc/jirawatch/internal/worklog"
)

func newTestDir(t *testing.T) *Dir {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "jirawatch"))
	if err != nil {
		t.Fatalf("open storage dir: %v", err)
	}
	return d
}

// ============================================================
// Timers document
// ============================================================

func TestTimersRoundTrip(t *testing.T) {
	d := newTestDir(t)
	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	states := []timer.State{
		{IssueKey: "A-1", Description: "First", Seconds: 120, Comment: "note"},
		{IssueKey: "A-2", Seconds: 30, Running: true, LastStarted: &started},
	}
	if err := d.SaveTimers(states); err != nil {
		t.Fatal(err)
	}
	loaded := d.LoadTimers()
	if len(loaded) != 2 {
		t.Fatalf("loaded %d states, want 2", len(loaded))
	}
	if loaded[0].IssueKey != "A-1" || loaded[0].Seconds != 120 || loaded[0].Comment != "note" {
		t.Fatalf("first state mismatch: %+v", loaded[0])
	}
	if !loaded[1].Running || loaded[1].LastStarted == nil || !loaded[1].LastStarted.Equal(started) {
		t.Fatalf("running state mismatch: %+v", loaded[1])
	}
}

func TestLoadTimersMissingFile(t *testing.T) {
	d := newTestDir(t)
	if got := d.LoadTimers(); len(got) != 0 {
		t.Fatalf("missing file should load empty, got %d", len(got))
	}
}

func TestLoadTimersCorruptFile(t *testing.T) {
	d := newTestDir(t)
	if err := os.WriteFile(filepath.Join(d.Path(), "timers.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := d.LoadTimers(); len(got) != 0 {
		t.Fatalf("corrupt file should load empty, got %d", len(got))
	}
}

func TestLoadTimersSkipsBadRecords(t *testing.T) {
	d := newTestDir(t)
	doc := `[{"issue_key":"A-1","seconds":10},{"issue_key":"A-2","seconds":"bogus"},{"issue_key":"A-3","seconds":30}]`
	if err := os.WriteFile(filepath.Join(d.Path(), "timers.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	loaded := d.LoadTimers()
	if len(loaded) != 2 {
		t.Fatalf("loaded %d states, want 2 (bad record skipped)", len(loaded))
	}
	if loaded[0].IssueKey != "A-1" || loaded[1].IssueKey != "A-3" {
		t.Fatalf("wrong survivors: %+v", loaded)
	}
}

func TestSaveTimersOverwritesWholeFile(t *testing.T) {
	d := newTestDir(t)
	if err := d.SaveTimers([]timer.State{{IssueKey: "A-1"}, {IssueKey: "A-2"}}); err != nil {
		t.Fatal(err)
	}
	if err := d.SaveTimers([]timer.State{{IssueKey: "B-1"}}); err != nil {
		t.Fatal(err)
	}
	loaded := d.LoadTimers()
	if len(loaded) != 1 || loaded[0].IssueKey != "B-1" {
		t.Fatalf("second save must replace the document: %+v", loaded)
	}
}

// ============================================================
// Pending worklogs document
// ============================================================

func TestPendingRoundTrip(t *testing.T) {
	d := newTestDir(t)
	entries := []worklog.Pending{
		{IssueKey: "A-1", Seconds: 600, Comment: "c", CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	if err := d.SavePending(entries); err != nil {
		t.Fatal(err)
	}
	loaded := d.LoadPending()
	if len(loaded) != 1 || loaded[0] != entries[0] {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadPendingSkipsInvalidEntries(t *testing.T) {
	d := newTestDir(t)
	doc := `[
		{"issue_key":"A-1","seconds":600,"comment":"","created_at":"2024-03-01T09:00:00Z"},
		{"issue_key":"","seconds":600,"created_at":"2024-03-01T09:00:00Z"},
		{"issue_key":"A-2","seconds":0,"created_at":"2024-03-01T09:00:00Z"}
	]`
	if err := os.WriteFile(filepath.Join(d.Path(), "pending_worklogs.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	loaded := d.LoadPending()
	if len(loaded) != 1 || loaded[0].IssueKey != "A-1" {
		t.Fatalf("invalid entries should be skipped: %+v", loaded)
	}
}

// ============================================================
// Settings document
// ============================================================

func TestSettingsRoundTrip(t *testing.T) {
	d := newTestDir(t)
	s := Settings{
		BaseURL:         "https://example.atlassian.net",
		Email:           "user@example.com",
		APIToken:        "secret",
		DefaultFilterID: "10001",
		FilterNames:     map[string]string{"10001": "My open issues"},
		DarkMode:        true,
	}
	if err := d.SaveSettings(s); err != nil {
		t.Fatal(err)
	}
	loaded := d.LoadSettings()
	if loaded.BaseURL != s.BaseURL || loaded.APIToken != "secret" || !loaded.DarkMode {
		t.Fatalf("settings mismatch: %+v", loaded)
	}
	if loaded.FilterNames["10001"] != "My open issues" {
		t.Fatal("filter name cache lost")
	}
	if !loaded.Configured() {
		t.Fatal("loaded settings should report configured")
	}
}

func TestSettingsDefaults(t *testing.T) {
	d := newTestDir(t)
	s := d.LoadSettings()
	if s.Configured() {
		t.Fatal("empty settings must not report configured")
	}
}

func TestSettingsFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	d := newTestDir(t)
	if err := d.SaveSettings(Settings{APIToken: "secret"}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(d.Path(), "settings.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("settings file mode = %o, want 600", perm)
	}
}

// ============================================================
// Reset
// ============================================================

func TestReset(t *testing.T) {
	d := newTestDir(t)
	if err := d.SaveTimers([]timer.State{{IssueKey: "A-1"}}); err != nil {
		t.Fatal(err)
	}
	if err := d.SaveSettings(Settings{Email: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := d.Reset(); err != nil {
		t.Fatal(err)
	}
	if len(d.LoadTimers()) != 0 {
		t.Fatal("timers should be gone after reset")
	}
	if d.LoadSettings().Email != "" {
		t.Fatal("settings should be gone after reset")
	}
	// Resetting an already-empty directory is fine.
	if err := d.Reset(); err != nil {
		t.Fatal(err)
	}
}
