package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// QueueEntry represents a track's placement in the queue,
// associating a track with who requested it and when.
type QueueEntry struct {
	Track       Track
	RequesterID snowflake.ID
	EnqueuedAt  time.Time

	// Failures counts consecutive transport failures of this entry.
	// It is reset when the track finishes normally.
	Failures int
}

// NewQueueEntry creates a new QueueEntry enqueued at now.
func NewQueueEntry(track Track, requesterID snowflake.ID, now time.Time) QueueEntry {
	return QueueEntry{
		Track:       track,
		RequesterID: requesterID,
		EnqueuedAt:  now.UTC(),
	}
}
