package timer

import (
	"errors"
	"time"
)

// ErrNoTimers is reported by bulk operations on an empty registry.
var ErrNoTimers = errors.New("no timers")

// Registry owns the ordered set of timers. Order is display order and is
// preserved across snapshot and restore. At most one timer runs at a time;
// Start enforces the policy by pausing every other running timer.
type Registry struct {
	timers []*Timer
	now    func() time.Time
}

// NewRegistry returns an empty registry reading the real clock.
func NewRegistry() *Registry {
	return NewRegistryWithClock(time.Now)
}

// NewRegistryWithClock returns an empty registry using the given clock.
func NewRegistryWithClock(now func() time.Time) *Registry {
	return &Registry{now: now}
}

// Add appends a new empty timer and returns it.
func (r *Registry) Add() *Timer {
	t := NewWithClock(r.now)
	r.timers = append(r.timers, t)
	return t
}

// AddState appends a timer restored from a persisted state.
func (r *Registry) AddState(s State) *Timer {
	t := fromState(s, r.now)
	r.timers = append(r.timers, t)
	return t
}

// Remove deletes the timer at the given position. Remaining timers keep
// their relative order; display indices are contiguous from 1 by position.
func (r *Registry) Remove(index int) bool {
	if index < 0 || index >= len(r.timers) {
		return false
	}
	r.timers = append(r.timers[:index], r.timers[index+1:]...)
	return true
}

// Start starts the timer at index and pauses every other running timer.
func (r *Registry) Start(index int) error {
	if index < 0 || index >= len(r.timers) {
		return ErrNoTimers
	}
	if err := r.timers[index].Start(); err != nil {
		return err
	}
	for i, t := range r.timers {
		if i != index && t.Running() {
			t.Pause()
		}
	}
	return nil
}

// PauseAll pauses every running timer and reports how many were running.
func (r *Registry) PauseAll() int {
	paused := 0
	for _, t := range r.timers {
		if t.Running() {
			t.Pause()
			paused++
		}
	}
	return paused
}

// ResetAll resets every timer. Fails with ErrNoTimers when the set is empty.
func (r *Registry) ResetAll() error {
	if len(r.timers) == 0 {
		return ErrNoTimers
	}
	for _, t := range r.timers {
		t.Reset()
	}
	return nil
}

// RemoveAll drops every timer. Fails with ErrNoTimers when the set is empty.
func (r *Registry) RemoveAll() error {
	if len(r.timers) == 0 {
		return ErrNoTimers
	}
	r.timers = nil
	return nil
}

// PrepareForSuspension banks running segments ahead of process exit.
func (r *Registry) PrepareForSuspension() {
	for _, t := range r.timers {
		t.PrepareForSuspension()
	}
}

// Snapshot returns the persisted form of every timer, in display order.
func (r *Registry) Snapshot() []State {
	states := make([]State, 0, len(r.timers))
	for _, t := range r.timers {
		states = append(states, t.State())
	}
	return states
}

// Restore replaces the set from persisted states. For each state that was
// running, wall-clock time elapsed since its persisted segment start is
// credited once (clamped at zero) and the segment restarts at now. The
// restored timer stays running.
func (r *Registry) Restore(states []State, now time.Time) {
	r.timers = nil
	for _, s := range states {
		if s.Running && s.LastStarted != nil {
			gap := int(now.Sub(*s.LastStarted) / time.Second)
			if gap > 0 {
				s.Seconds += gap
			}
			started := now
			s.LastStarted = &started
		}
		r.AddState(s)
	}
}

// Len reports the number of timers.
func (r *Registry) Len() int { return len(r.timers) }

// At returns the timer at position index, or nil when out of range.
func (r *Registry) At(index int) *Timer {
	if index < 0 || index >= len(r.timers) {
		return nil
	}
	return r.timers[index]
}

// Index reports the position of t, or -1 when t is not in the registry.
func (r *Registry) Index(t *Timer) int {
	for i, other := range r.timers {
		if other == t {
			return i
		}
	}
	return -1
}

// Timers returns the ordered set. The slice is shared; callers mutate
// timers only through their methods.
func (r *Registry) Timers() []*Timer { return r.timers }
