package usecases

import (
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

// Track is an alias for domain.Track.
type Track = domain.Track

// TrackID is an alias for domain.TrackID.
type TrackID = domain.TrackID

// Chapter is an alias for domain.Chapter.
type Chapter = domain.Chapter

// QueueEntry is an alias for domain.QueueEntry.
type QueueEntry = domain.QueueEntry

// PlayerStatus is an alias for domain.PlayerStatus.
type PlayerStatus = domain.PlayerStatus

// PlayerStateRepository is an alias for domain.PlayerStateRepository.
type PlayerStateRepository = domain.PlayerStateRepository

// FormatDuration formats a duration as mm:ss or hh:mm:ss.
var FormatDuration = domain.FormatDuration

// Player statuses.
const (
	StatusIdle    = domain.StatusIdle
	StatusPlaying = domain.StatusPlaying
	StatusPaused  = domain.StatusPaused
)
