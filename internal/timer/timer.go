// Package timer implements the stopwatch state machine and the registry that
// owns the ordered set of stopwatches.
package timer

import (
	"errors"
	"time"
)

// ErrIssueRequired is returned by Start when the slot has no issue key.
var ErrIssueRequired = errors.New("issue required")

// ErrNegativeDuration is returned by EditDuration for values below zero.
var ErrNegativeDuration = errors.New("duration cannot be negative")

// State is the persisted form of one timer slot.
type State struct {
	IssueKey    string     `json:"issue_key"`
	Description string     `json:"description"`
	Seconds     int        `json:"seconds"`
	Running     bool       `json:"running"`
	LastStarted *time.Time `json:"last_started,omitempty"`
	Comment     string     `json:"comment"`
}

// Timer is a single stopwatch. Seconds accumulated from finished run
// segments live in state.Seconds; a running segment is measured from
// state.LastStarted. LastStarted is set exactly when Running is true.
type Timer struct {
	state State
	now   func() time.Time
}

// New returns an idle, empty timer reading the real clock.
func New() *Timer {
	return NewWithClock(time.Now)
}

// NewWithClock returns an idle, empty timer using the given clock.
func NewWithClock(now func() time.Time) *Timer {
	return &Timer{now: now}
}

func fromState(s State, now func() time.Time) *Timer {
	if s.Seconds < 0 {
		s.Seconds = 0
	}
	if !s.Running {
		s.LastStarted = nil
	}
	if s.Running && s.LastStarted == nil {
		s.Running = false
	}
	return &Timer{state: s, now: now}
}

// Start begins a run segment. The issue key must be set. Starting a timer
// that is already running is a no-op.
func (t *Timer) Start() error {
	if t.state.IssueKey == "" {
		return ErrIssueRequired
	}
	if t.state.Running {
		return nil
	}
	started := t.now()
	t.state.Running = true
	t.state.LastStarted = &started
	return nil
}

// Pause folds the running segment into the accumulated seconds. No-op when
// idle.
func (t *Timer) Pause() {
	if !t.state.Running {
		return
	}
	t.state.Seconds += t.segmentSeconds()
	t.state.Running = false
	t.state.LastStarted = nil
}

// Reset discards all tracked time and stops the timer. Confirmation is the
// caller's concern.
func (t *Timer) Reset() {
	t.state.Seconds = 0
	t.state.Running = false
	t.state.LastStarted = nil
}

// EditDuration replaces the accumulated seconds. A running timer restarts
// its segment at now so the edit takes effect without double counting.
func (t *Timer) EditDuration(seconds int) error {
	if seconds < 0 {
		return ErrNegativeDuration
	}
	t.state.Seconds = seconds
	if t.state.Running {
		started := t.now()
		t.state.LastStarted = &started
	}
	return nil
}

// Clear zeroes the tracked time once it has been captured as a worklog
// draft, keeping a running timer running from now.
func (t *Timer) Clear() {
	t.state.Seconds = 0
	if t.state.Running {
		started := t.now()
		t.state.LastStarted = &started
	}
}

// CurrentSeconds reports banked time plus the running segment, if any.
// Pure read.
func (t *Timer) CurrentSeconds() int {
	return t.state.Seconds + t.segmentSeconds()
}

// PrepareForSuspension banks the running segment and restamps it at now, so
// a later restore credits wall-clock time spent outside the process exactly
// once.
func (t *Timer) PrepareForSuspension() {
	if !t.state.Running {
		return
	}
	t.state.Seconds += t.segmentSeconds()
	started := t.now()
	t.state.LastStarted = &started
}

// segmentSeconds measures the current run segment, clamping clock skew to
// zero.
func (t *Timer) segmentSeconds() int {
	if !t.state.Running || t.state.LastStarted == nil {
		return 0
	}
	elapsed := int(t.now().Sub(*t.state.LastStarted) / time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (t *Timer) Running() bool       { return t.state.Running }
func (t *Timer) IssueKey() string    { return t.state.IssueKey }
func (t *Timer) Description() string { return t.state.Description }
func (t *Timer) Comment() string     { return t.state.Comment }

// SetIssue assigns the issue key and its cached summary. Clearing the key
// clears the summary too.
func (t *Timer) SetIssue(key, description string) {
	t.state.IssueKey = key
	if key == "" {
		description = ""
	}
	t.state.Description = description
}

func (t *Timer) SetDescription(description string) { t.state.Description = description }
func (t *Timer) SetComment(comment string)         { t.state.Comment = comment }

// State returns a copy of the persisted form.
func (t *Timer) State() State {
	s := t.state
	if s.LastStarted != nil {
		started := *s.LastStarted
		s.LastStarted = &started
	}
	return s
}
