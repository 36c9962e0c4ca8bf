package domain

import "errors"

// State machine errors. They are detected before any mutation, so a failed
// operation leaves the PlayerState unchanged.
var (
	// ErrNothingPlaying is returned when an operation requires a current track.
	ErrNothingPlaying = errors.New("nothing is currently playing")

	// ErrEmptyQueue is returned when an operation requires pending tracks.
	ErrEmptyQueue = errors.New("the queue is empty")

	// ErrAlreadyEmpty is returned when clearing a queue that has no pending tracks.
	ErrAlreadyEmpty = errors.New("the queue is already empty")

	// ErrInvalidPosition is returned when a queue position is out of bounds.
	ErrInvalidPosition = errors.New("invalid queue position")

	// ErrOutOfRange is returned when seeking beyond the end of the current track.
	ErrOutOfRange = errors.New("position is beyond the end of the track")

	// ErrNotSeekable is returned when seeking within a live stream.
	ErrNotSeekable = errors.New("live streams cannot be seeked")

	// ErrAlreadyPaused is returned when pausing while already paused.
	ErrAlreadyPaused = errors.New("playback is already paused")

	// ErrNotPaused is returned when resuming while not paused.
	ErrNotPaused = errors.New("playback is not paused")
)
