package store

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/jirawatch.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	// Running migrate again should be a no-op
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Issue summary cache
// ============================================================

func TestCacheAndReadSummary(t *testing.T) {
	s := newTestStore(t)
	if err := s.CacheIssueSummary("PROJ-1", "Fix the widget"); err != nil {
		t.Fatal(err)
	}
	summary, err := s.IssueSummary("PROJ-1")
	if err != nil {
		t.Fatal(err)
	}
	if summary != "Fix the widget" {
		t.Fatalf("summary = %q", summary)
	}
}

func TestCacheSummaryUpsert(t *testing.T) {
	s := newTestStore(t)
	if err := s.CacheIssueSummary("PROJ-1", "Old"); err != nil {
		t.Fatal(err)
	}
	if err := s.CacheIssueSummary("PROJ-1", "New"); err != nil {
		t.Fatal(err)
	}
	summary, err := s.IssueSummary("PROJ-1")
	if err != nil {
		t.Fatal(err)
	}
	if summary != "New" {
		t.Fatalf("summary = %q, want New", summary)
	}
}

func TestUnknownSummaryIsEmpty(t *testing.T) {
	s := newTestStore(t)
	summary, err := s.IssueSummary("NOPE-1")
	if err != nil {
		t.Fatal(err)
	}
	if summary != "" {
		t.Fatalf("summary = %q, want empty", summary)
	}
}

func TestCacheSummaryRequiresKey(t *testing.T) {
	s := newTestStore(t)
	if err := s.CacheIssueSummary("", "x"); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestIssueSummariesMap(t *testing.T) {
	s := newTestStore(t)
	for key, summary := range map[string]string{"A-1": "one", "A-2": "two"} {
		if err := s.CacheIssueSummary(key, summary); err != nil {
			t.Fatal(err)
		}
	}
	all, err := s.IssueSummaries()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all["A-1"] != "one" || all["A-2"] != "two" {
		t.Fatalf("unexpected map: %v", all)
	}
}

// ============================================================
// Posted worklog history
// ============================================================

func TestRecordAndListPosted(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, key := range []string{"A-1", "A-2", "A-3"} {
		err := s.RecordPosted(key, 600*(i+1), "c", "id", base.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatal(err)
		}
	}

	recent, err := s.RecentPosted(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	// Newest first.
	if recent[0].IssueKey != "A-3" || recent[1].IssueKey != "A-2" {
		t.Fatalf("wrong order: %q, %q", recent[0].IssueKey, recent[1].IssueKey)
	}
	if recent[0].Seconds != 1800 {
		t.Fatalf("seconds = %d, want 1800", recent[0].Seconds)
	}
	if !recent[0].PostedAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("posted at = %v", recent[0].PostedAt)
	}
}

func TestRecordPostedValidates(t *testing.T) {
	s := newTestStore(t)
	if err := s.RecordPosted("", 60, "", "", time.Now()); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := s.RecordPosted("A-1", 0, "", "", time.Now()); err == nil {
		t.Fatal("expected error for zero seconds")
	}
}

func TestDailyTotals(t *testing.T) {
	s := newTestStore(t)
	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	mustRecord := func(key string, seconds int, at time.Time) {
		t.Helper()
		if err := s.RecordPosted(key, seconds, "", "", at); err != nil {
			t.Fatal(err)
		}
	}
	mustRecord("A-1", 600, day1)
	mustRecord("A-1", 300, day1.Add(2*time.Hour))
	mustRecord("A-2", 900, day1)
	mustRecord("A-1", 1200, day2)

	totals, err := s.DailyTotals(day1.Truncate(24*time.Hour), day2.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 3 {
		t.Fatalf("len = %d, want 3", len(totals))
	}
	if totals[0].Date != "2024-03-01" || totals[0].IssueKey != "A-1" || totals[0].TotalSeconds != 900 || totals[0].EntryCount != 2 {
		t.Fatalf("first total mismatch: %+v", totals[0])
	}
	if totals[2].Date != "2024-03-02" || totals[2].TotalSeconds != 1200 {
		t.Fatalf("second day mismatch: %+v", totals[2])
	}
}

func TestDailyTotalsWindow(t *testing.T) {
	s := newTestStore(t)
	inside := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	outside := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)
	if err := s.RecordPosted("A-1", 600, "", "", inside); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordPosted("A-1", 600, "", "", outside); err != nil {
		t.Fatal(err)
	}
	totals, err := s.DailyTotals(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 1 || totals[0].TotalSeconds != 600 {
		t.Fatalf("window should exclude older entries: %+v", totals)
	}
}
