package worklog

import (
	"fmt"
	"time"

	"github.com/sadopc/jirawatch/internal/jira"
	"github.com/sadopc/jirawatch/internal/timer"
)

// Outcome describes where a submission ended up.
type Outcome struct {
	WorklogID string // remote id when the post succeeded
	Deferred  bool   // true when the draft went to the pending queue
	Err       error  // the post error, when there was one
}

// Coordinator decides between posting now and queueing for later. It runs
// on the owner loop: network attempts happen elsewhere (in background
// commands) and only their results pass through here, so the queue and the
// timers are never touched concurrently.
//
// A draft counts as captured once it is durable anywhere, posted to Jira or
// written to the pending queue. The originating timer is cleared on every
// capturing path, so a given stretch of worked time is represented in
// exactly one place.
type Coordinator struct {
	queue *Queue
}

// NewCoordinator builds a coordinator over the pending queue.
func NewCoordinator(queue *Queue) *Coordinator {
	return &Coordinator{queue: queue}
}

// Defer queues the draft without any network involvement and clears the
// originating timer. t may be nil when the draft has no live timer.
func (c *Coordinator) Defer(t *timer.Timer, sub jira.Submission) error {
	if err := c.enqueue(sub); err != nil {
		return err
	}
	if t != nil {
		t.Clear()
	}
	return nil
}

// Finalize applies the result of a background post attempt. On success the
// timer is cleared. On failure the draft falls back to the pending queue;
// the timer is cleared then too, since the queue now owns that time.
func (c *Coordinator) Finalize(t *timer.Timer, sub jira.Submission, worklogID string, postErr error) (Outcome, error) {
	if postErr == nil {
		if t != nil {
			t.Clear()
		}
		return Outcome{WorklogID: worklogID}, nil
	}
	if err := c.enqueue(sub); err != nil {
		// The draft reached neither Jira nor disk; keep the timer intact.
		return Outcome{Err: postErr}, fmt.Errorf("defer after failed post: %w", err)
	}
	if t != nil {
		t.Clear()
	}
	return Outcome{Deferred: true, Err: postErr}, nil
}

// Ack removes the queued entry at index after its remote post succeeded,
// persisting before the batch moves on. A retry after a later failure can
// therefore never resubmit an acknowledged entry.
func (c *Coordinator) Ack(index int) error {
	return c.queue.Remove(index)
}

// BatchSubmission converts a queued entry into a post payload. Batch posts
// start "now" and leave estimate adjustment on auto, as queued entries carry
// no schedule of their own.
func BatchSubmission(p Pending, now time.Time) jira.Submission {
	return jira.Submission{
		IssueKey:       p.IssueKey,
		Seconds:        p.Seconds,
		Comment:        p.Comment,
		Started:        now,
		AdjustEstimate: jira.AdjustAuto,
	}
}

func (c *Coordinator) enqueue(sub jira.Submission) error {
	return c.queue.Enqueue(Pending{
		IssueKey:  sub.IssueKey,
		Seconds:   sub.Seconds,
		Comment:   sub.Comment,
		CreatedAt: time.Now(),
	})
}
