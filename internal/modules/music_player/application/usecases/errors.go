package usecases

import (
	"errors"

	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// Application errors for the music player module.
var (
	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrNoResults is returned when a query resolves to nothing.
	ErrNoResults = errors.New("no results found")

	// ErrLoadFailed is returned when the resolver reports an error for a query.
	ErrLoadFailed = errors.New("failed to load track")

	// ErrTransport is returned when the audio transport could not stream a track.
	ErrTransport = errors.New("failed to stream track")

	// ErrChapterNotFound is returned when a seek target names an unknown chapter.
	ErrChapterNotFound = errors.New("no chapter with that title")
)

// Re-export domain errors so presentation only depends on usecases.
var (
	ErrNothingPlaying  = domain.ErrNothingPlaying
	ErrEmptyQueue      = domain.ErrEmptyQueue
	ErrAlreadyEmpty    = domain.ErrAlreadyEmpty
	ErrInvalidPosition = domain.ErrInvalidPosition
	ErrOutOfRange      = domain.ErrOutOfRange
	ErrNotSeekable     = domain.ErrNotSeekable
	ErrAlreadyPaused   = domain.ErrAlreadyPaused
	ErrNotPaused       = domain.ErrNotPaused
)
