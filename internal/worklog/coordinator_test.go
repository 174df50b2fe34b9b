package worklog

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/jirawatch/internal/jira"
	"github.com/sadopc/jirawatch/internal/timer"
)

func newDraft(key string, seconds int) jira.Submission {
	return jira.Submission{
		IssueKey:       key,
		Seconds:        seconds,
		Comment:        "draft for " + key,
		Started:        time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		AdjustEstimate: jira.AdjustAuto,
	}
}

func newTrackedTimer(t *testing.T, key string, seconds int) *timer.Timer {
	t.Helper()
	tm := timer.New()
	tm.SetIssue(key, "")
	if err := tm.EditDuration(seconds); err != nil {
		t.Fatal(err)
	}
	return tm
}

// ============================================================
// Defer
// ============================================================

func TestDeferQueuesAndClearsTimer(t *testing.T) {
	q := NewQueue(nil, nil)
	c := NewCoordinator(q)
	tm := newTrackedTimer(t, "A-1", 900)

	if err := c.Defer(tm, newDraft("A-1", 900)); err != nil {
		t.Fatal(err)
	}
	if q.Len() != 1 {
		t.Fatalf("queue len = %d, want 1", q.Len())
	}
	entry, _ := q.At(0)
	if entry.IssueKey != "A-1" || entry.Seconds != 900 || entry.Comment != "draft for A-1" {
		t.Fatalf("queued entry mismatch: %+v", entry)
	}
	if entry.CreatedAt.IsZero() {
		t.Fatal("CreatedAt must be stamped at queue time")
	}
	if tm.CurrentSeconds() != 0 {
		t.Fatal("timer must be cleared once the draft is queued")
	}
}

func TestDeferPersistFailureKeepsTimer(t *testing.T) {
	saver := &countingSaver{fail: errors.New("disk full")}
	q := NewQueue(nil, saver.save)
	c := NewCoordinator(q)
	tm := newTrackedTimer(t, "A-1", 900)

	if err := c.Defer(tm, newDraft("A-1", 900)); err == nil {
		t.Fatal("expected persist failure to surface")
	}
	if tm.CurrentSeconds() != 900 {
		t.Fatal("timer must keep its time when the draft never became durable")
	}
}

// ============================================================
// Finalize
// ============================================================

func TestFinalizeSuccessClearsTimerOnly(t *testing.T) {
	q := NewQueue(nil, nil)
	c := NewCoordinator(q)
	tm := newTrackedTimer(t, "A-1", 600)

	outcome, err := c.Finalize(tm, newDraft("A-1", 600), "42001", nil)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.WorklogID != "42001" || outcome.Deferred {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if q.Len() != 0 {
		t.Fatal("successful posts must not touch the queue")
	}
	if tm.CurrentSeconds() != 0 {
		t.Fatal("timer must be cleared after a successful post")
	}
}

func TestFinalizeFailureClearsTimer(t *testing.T) {
	q := NewQueue(nil, nil)
	c := NewCoordinator(q)
	tm := newTrackedTimer(t, "A-1", 600)
	postErr := errors.New("network down")

	outcome, err := c.Finalize(tm, newDraft("A-1", 600), "", postErr)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Deferred || !errors.Is(outcome.Err, postErr) {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if q.Len() != 1 {
		t.Fatalf("queue len = %d, want exactly one fallback entry", q.Len())
	}
	entry, _ := q.At(0)
	if entry.IssueKey != "A-1" || entry.Seconds != 600 {
		t.Fatalf("fallback entry mismatch: %+v", entry)
	}
	// The queue owns the time now; the timer starts over.
	if tm.CurrentSeconds() != 0 {
		t.Fatal("timer must be cleared once the fallback entry is durable")
	}
}

func TestFinalizeFailureWithBrokenQueueKeepsTimer(t *testing.T) {
	saver := &countingSaver{fail: errors.New("disk full")}
	q := NewQueue(nil, saver.save)
	c := NewCoordinator(q)
	tm := newTrackedTimer(t, "A-1", 600)

	_, err := c.Finalize(tm, newDraft("A-1", 600), "", errors.New("network down"))
	if err == nil {
		t.Fatal("expected the persist failure to surface")
	}
	if tm.CurrentSeconds() != 600 {
		t.Fatal("timer must not be cleared when nothing became durable")
	}
}

func TestFinalizeNilTimer(t *testing.T) {
	q := NewQueue(nil, nil)
	c := NewCoordinator(q)
	if _, err := c.Finalize(nil, newDraft("A-1", 60), "7", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Finalize(nil, newDraft("A-1", 60), "", errors.New("x")); err != nil {
		t.Fatal(err)
	}
}

// ============================================================
// Batch posting
// ============================================================

func TestBatchAcksEachSuccessIndividually(t *testing.T) {
	saver := &countingSaver{}
	var initial []Pending
	for _, k := range []string{"B-1", "B-2", "B-3", "B-4"} {
		initial = append(initial, pendingEntry(k, 60))
	}
	q := NewQueue(initial, saver.save)
	c := NewCoordinator(q)

	// Simulate the posting loop: third entry fails remotely.
	posted := 0
	for {
		head, ok := q.At(0)
		if !ok {
			break
		}
		if head.IssueKey == "B-3" {
			break // remote failure stops the batch
		}
		if err := c.Ack(0); err != nil {
			t.Fatal(err)
		}
		posted++
	}

	if posted != 2 {
		t.Fatalf("posted %d entries before the failure, want 2", posted)
	}
	// Acked entries are gone and were persisted away one at a time, so a
	// retry cannot resubmit them.
	if q.Len() != 2 {
		t.Fatalf("queue len = %d, want 2", q.Len())
	}
	head, _ := q.At(0)
	if head.IssueKey != "B-3" {
		t.Fatalf("head = %q, want the failed entry B-3", head.IssueKey)
	}
	if saver.calls != 2 {
		t.Fatalf("persist calls = %d, want one per acknowledged entry", saver.calls)
	}
}

func TestBatchSubmission(t *testing.T) {
	now := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	sub := BatchSubmission(pendingEntry("B-1", 300), now)
	if sub.IssueKey != "B-1" || sub.Seconds != 300 {
		t.Fatalf("unexpected submission: %+v", sub)
	}
	if !sub.Started.Equal(now) {
		t.Fatal("batch submissions start now")
	}
	if sub.AdjustEstimate != jira.AdjustAuto {
		t.Fatalf("adjust = %q, want auto", sub.AdjustEstimate)
	}
	if sub.RemainingEstimate != nil {
		t.Fatal("batch submissions carry no remaining estimate")
	}
}
