package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track finished normally.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load or stream.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the track was stopped by the user.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means the track was replaced by another.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the track was cleaned up.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if this end reason should advance the queue.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed
}

// IsFailure returns true if the track ended because of a transport error.
func (r TrackEndReason) IsFailure() bool {
	return r == TrackEndLoadFailed
}

// PlaybackStartedEvent is published when a track starts playing.
type PlaybackStartedEvent struct {
	GuildID               snowflake.ID
	Entry                 QueueEntry
	PlaybackSeq           uint64
	NotificationChannelID snowflake.ID
	LoopTrack             bool
	LoopQueue             bool
	UpNext                *QueueEntry // head of the pending queue, nil if empty
}

// PlaybackFinishedEvent is published when a track stops being now playing.
// This signals that the "Now Playing" message should be deleted.
type PlaybackFinishedEvent struct {
	GuildID snowflake.ID
	Message NowPlayingMessage
}

// TrackEndedEvent is published by the audio transport when a stream ends.
// PlaybackSeq is the playback the transport was streaming when the event
// arrived.
type TrackEndedEvent struct {
	GuildID     snowflake.ID
	TrackID     TrackID
	PlaybackSeq uint64
	Reason      TrackEndReason
}

// TrackFailedEvent is published when a track could not be streamed and was
// skipped. It carries what the notification needs.
type TrackFailedEvent struct {
	GuildID               snowflake.ID
	Track                 Track
	NotificationChannelID snowflake.ID
	Reason                string
}
