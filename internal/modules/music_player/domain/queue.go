package domain

import (
	"time"

	"github.com/samber/lo"
	"github.com/samber/lo/mutable"
)

// Queue holds the pending entries of a guild. Index 0 is "next up";
// the currently playing entry is not part of the Queue.
type Queue struct {
	entries []QueueEntry
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{
		entries: make([]QueueEntry, 0),
	}
}

// IsEmpty returns true if the queue has no entries.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.entries)
}

func (q *Queue) isValidIndex(index int) bool {
	return 0 <= index && index < q.Len()
}

// List returns a copy of all entries in playback order.
func (q *Queue) List() []QueueEntry {
	result := make([]QueueEntry, q.Len())
	copy(result, q.entries)
	return result
}

// GetAt returns the entry at the given index without removing it.
// Returns nil if the index is out of bounds.
func (q *Queue) GetAt(index int) *QueueEntry {
	if !q.isValidIndex(index) {
		return nil
	}
	entry := q.entries[index]
	return &entry
}

// Append adds entries to the end of the queue.
func (q *Queue) Append(entries ...QueueEntry) {
	q.entries = append(q.entries, entries...)
}

// InsertAt inserts an entry before the given index. Indices below zero
// insert at the head; indices past the end append at the tail.
// Returns the index the entry ended up at.
func (q *Queue) InsertAt(index int, entry QueueEntry) int {
	index = min(max(index, 0), q.Len())
	q.entries = append(q.entries, QueueEntry{})
	copy(q.entries[index+1:], q.entries[index:])
	q.entries[index] = entry
	return index
}

// RemoveAt removes and returns the entry at the given index.
// Returns nil if the index is out of bounds.
func (q *Queue) RemoveAt(index int) *QueueEntry {
	if !q.isValidIndex(index) {
		return nil
	}

	entry := q.entries[index]
	q.entries = append(q.entries[:index], q.entries[index+1:]...)
	return &entry
}

// PopFront removes and returns the head of the queue, or nil if empty.
func (q *Queue) PopFront() *QueueEntry {
	return q.RemoveAt(0)
}

// Shuffle permutes the entries uniformly at random.
func (q *Queue) Shuffle() {
	mutable.Shuffle(q.entries)
}

// Clear removes all entries and returns how many were removed.
func (q *Queue) Clear() int {
	count := q.Len()
	q.entries = make([]QueueEntry, 0)
	return count
}

// DurationBefore returns the summed length of the entries ahead of index.
func (q *Queue) DurationBefore(index int) time.Duration {
	index = min(max(index, 0), q.Len())
	return lo.SumBy(q.entries[:index], func(e QueueEntry) time.Duration {
		return e.Track.Length()
	})
}

// TotalDuration returns the summed length of all entries.
func (q *Queue) TotalDuration() time.Duration {
	return q.DurationBefore(q.Len())
}
