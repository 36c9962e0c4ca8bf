package domain

import "github.com/disgoorg/snowflake/v2"

// NowPlayingMessage is the notification posted when a playback starts. It is
// deleted when that playback ends, so it keeps its own channel: the guild's
// notification channel may have changed in the meantime.
type NowPlayingMessage struct {
	ChannelID   snowflake.ID
	MessageID   snowflake.ID
	PlaybackSeq uint64 // playback the message announces
}

// NewNowPlayingMessage creates a NowPlayingMessage for the given playback.
func NewNowPlayingMessage(channelID, messageID snowflake.ID, playbackSeq uint64) NowPlayingMessage {
	return NowPlayingMessage{
		ChannelID:   channelID,
		MessageID:   messageID,
		PlaybackSeq: playbackSeq,
	}
}

// Announces reports whether the message belongs to the playback p is on now.
func (m NowPlayingMessage) Announces(p *PlayerState) bool {
	return !p.IsIdle() && p.PlaybackSeq() == m.PlaybackSeq
}
