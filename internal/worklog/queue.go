// Package worklog holds the durable pending-worklog queue and the submit-or-
// defer coordinator that feeds it.
package worklog

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInvalidEntry rejects pending entries with no issue or no time.
var ErrInvalidEntry = errors.New("pending worklog needs an issue key and positive seconds")

// Pending is one deferred submission. CreatedAt records when it was queued,
// not when the time was worked.
type Pending struct {
	IssueKey  string    `json:"issue_key"`
	Seconds   int       `json:"seconds"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveFunc persists the full queue contents. It is called synchronously
// after every mutation; a pending entry that never reached disk is the worst
// failure this app can produce.
type SaveFunc func([]Pending) error

// Queue is the insertion-ordered set of deferred submissions.
type Queue struct {
	entries []Pending
	save    SaveFunc
}

// NewQueue wraps previously loaded entries. save may be nil in tests.
func NewQueue(entries []Pending, save SaveFunc) *Queue {
	return &Queue{entries: entries, save: save}
}

// Enqueue appends an entry and persists. The entry is visible to readers as
// soon as Enqueue returns.
func (q *Queue) Enqueue(e Pending) error {
	if e.IssueKey == "" || e.Seconds <= 0 {
		return ErrInvalidEntry
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	q.entries = append(q.entries, e)
	return q.persist()
}

// Entries returns a copy of the queue in insertion order.
func (q *Queue) Entries() []Pending {
	out := make([]Pending, len(q.entries))
	copy(out, q.entries)
	return out
}

// Len reports the number of queued entries.
func (q *Queue) Len() int { return len(q.entries) }

// At returns the entry at position i.
func (q *Queue) At(i int) (Pending, bool) {
	if i < 0 || i >= len(q.entries) {
		return Pending{}, false
	}
	return q.entries[i], true
}

// Remove deletes the entry at position i and persists.
func (q *Queue) Remove(i int) error {
	if i < 0 || i >= len(q.entries) {
		return fmt.Errorf("pending index %d out of range", i)
	}
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	return q.persist()
}

// RemoveByIndices deletes the entries at the given positions, in any order
// and with duplicates tolerated. Removal walks the indices descending so
// earlier removals cannot shift later targets.
func (q *Queue) RemoveByIndices(indices []int) error {
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	prev := -1
	for _, i := range sorted {
		if i == prev || i < 0 || i >= len(q.entries) {
			prev = i
			continue
		}
		q.entries = append(q.entries[:i], q.entries[i+1:]...)
		prev = i
	}
	return q.persist()
}

// Drain returns every entry and clears the queue in one durable step.
func (q *Queue) Drain() ([]Pending, error) {
	drained := q.entries
	q.entries = nil
	if err := q.persist(); err != nil {
		return drained, err
	}
	return drained, nil
}

func (q *Queue) persist() error {
	if q.save == nil {
		return nil
	}
	if err := q.save(q.entries); err != nil {
		return fmt.Errorf("persist pending worklogs: %w", err)
	}
	return nil
}
