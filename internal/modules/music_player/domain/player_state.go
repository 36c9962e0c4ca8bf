package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// PlayerStatus is the playback state of a guild.
type PlayerStatus int

const (
	StatusIdle PlayerStatus = iota
	StatusPlaying
	StatusPaused
)

// String returns the string representation of the status.
func (s PlayerStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "idle"
	}
}

// EnqueueResult describes where an added entry landed.
type EnqueueResult struct {
	// Started is true when the entry went straight to now playing.
	Started bool
	// Position is the 1-based position the entry will play at. A started
	// entry plays immediately and reports 1.
	Position int
	// ETA is the estimated wait before the entry starts playing.
	ETA time.Duration
}

// PlayerState represents the playback state of a guild. It is not safe for
// concurrent use: callers serialize access per guild.
type PlayerState struct {
	guildID               snowflake.ID
	voiceChannelID        snowflake.ID       // Voice channel the bot is connected to
	notificationChannelID snowflake.ID       // Text channel for notifications
	nowPlayingMessage     *NowPlayingMessage // "Now Playing" message info (for deletion)

	current *QueueEntry // nil when idle
	queue   Queue

	startedAt     time.Time     // start of the current track, shifted on resume and seek
	paused        bool          // true when playback is paused
	pausedElapsed time.Duration // elapsed time captured when paused

	loopTrack bool
	loopQueue bool

	playbackSeq uint64 // incremented every time a track starts
}

// NewPlayerState creates a new idle PlayerState for the given guild and channels.
func NewPlayerState(guildID, voiceChannelID, notificationChannelID snowflake.ID) *PlayerState {
	return &PlayerState{
		guildID:               guildID,
		voiceChannelID:        voiceChannelID,
		notificationChannelID: notificationChannelID,
		queue:                 NewQueue(),
	}
}

// GetGuildID returns the guild ID.
func (p *PlayerState) GetGuildID() snowflake.ID {
	return p.guildID
}

// No SetGuildID method: guildID must not be modified after initialization

// GetVoiceChannelID returns the current voice channel ID.
func (p *PlayerState) GetVoiceChannelID() snowflake.ID {
	return p.voiceChannelID
}

// SetVoiceChannelID updates the voice channel ID.
func (p *PlayerState) SetVoiceChannelID(channelID snowflake.ID) {
	p.voiceChannelID = channelID
}

// GetNotificationChannelID returns the text channel used for notifications.
func (p *PlayerState) GetNotificationChannelID() snowflake.ID {
	return p.notificationChannelID
}

// SetNotificationChannelID updates the notification channel ID.
func (p *PlayerState) SetNotificationChannelID(channelID snowflake.ID) {
	p.notificationChannelID = channelID
}

// GetNowPlayingMessage returns a copy of the "Now Playing" message info.
func (p *PlayerState) GetNowPlayingMessage() *NowPlayingMessage {
	if p.nowPlayingMessage == nil {
		return nil
	}
	msg := *p.nowPlayingMessage
	return &msg
}

// SetNowPlayingMessage stores the "Now Playing" message info for later deletion.
func (p *PlayerState) SetNowPlayingMessage(msg *NowPlayingMessage) {
	p.nowPlayingMessage = msg
}

// RecordNowPlayingMessage stores msg if it announces the current playback.
// A message for a playback that already ended is not stored.
func (p *PlayerState) RecordNowPlayingMessage(msg NowPlayingMessage) bool {
	if !msg.Announces(p) {
		return false
	}
	p.nowPlayingMessage = &msg
	return true
}

// ClearNowPlayingMessage clears the stored "Now Playing" message info.
func (p *PlayerState) ClearNowPlayingMessage() {
	p.nowPlayingMessage = nil
}

// Status returns the current playback status.
func (p *PlayerState) Status() PlayerStatus {
	switch {
	case p.current == nil:
		return StatusIdle
	case p.paused:
		return StatusPaused
	default:
		return StatusPlaying
	}
}

// IsIdle returns true if nothing is playing.
func (p *PlayerState) IsIdle() bool {
	return p.current == nil
}

// IsPaused returns true if playback is paused.
func (p *PlayerState) IsPaused() bool {
	return p.current != nil && p.paused
}

// Current returns a copy of the now playing entry, or nil if idle.
func (p *PlayerState) Current() *QueueEntry {
	if p.current == nil {
		return nil
	}
	entry := *p.current
	return &entry
}

// Pending returns a copy of the pending queue.
func (p *PlayerState) Pending() []QueueEntry {
	return p.queue.List()
}

// PendingLen returns the number of pending entries.
func (p *PlayerState) PendingLen() int {
	return p.queue.Len()
}

// PlaybackSeq identifies the current playback. It changes whenever a track
// starts, including restarts of the same track.
func (p *PlayerState) PlaybackSeq() uint64 {
	return p.playbackSeq
}

// LoopTrack reports whether the current track repeats.
func (p *PlayerState) LoopTrack() bool {
	return p.loopTrack
}

// LoopQueue reports whether finished tracks are recycled to the queue tail.
func (p *PlayerState) LoopQueue() bool {
	return p.loopQueue
}

// startTrack makes entry the now playing entry from position zero.
func (p *PlayerState) startTrack(entry QueueEntry, now time.Time) {
	p.current = &entry
	p.playbackSeq++
	p.startedAt = now
	p.paused = false
	p.pausedElapsed = 0
}

func (p *PlayerState) goIdle() {
	p.current = nil
	p.startedAt = time.Time{}
	p.paused = false
	p.pausedElapsed = 0
}

// Enqueue adds an entry. An idle player starts it immediately; otherwise it
// is appended to the pending queue.
func (p *PlayerState) Enqueue(entry QueueEntry, now time.Time) EnqueueResult {
	if p.IsIdle() {
		p.startTrack(entry, now)
		return EnqueueResult{Started: true, Position: 1}
	}

	eta := p.Remaining(now) + p.queue.TotalDuration()
	p.queue.Append(entry)
	return EnqueueResult{
		Position: p.queue.Len(),
		ETA:      eta,
	}
}

// InsertAt inserts an entry at a 1-based pending position. Positions below 1
// insert at the head, positions past the end append at the tail. An idle
// player starts the entry immediately, as Enqueue does.
func (p *PlayerState) InsertAt(entry QueueEntry, position int, now time.Time) EnqueueResult {
	if p.IsIdle() {
		return p.Enqueue(entry, now)
	}

	index := p.queue.InsertAt(position-1, entry)
	return EnqueueResult{
		Position: index + 1,
		ETA:      p.Remaining(now) + p.queue.DurationBefore(index),
	}
}

// Advance moves playback forward after the current track finished naturally.
// With loopTrack the same entry restarts and the queue is untouched. Otherwise
// the finished entry is recycled to the tail under loopQueue, and the head of
// the queue starts. An empty queue always ends in idle, loopQueue or not.
// Returns the new now playing entry, or nil if idle.
func (p *PlayerState) Advance(now time.Time) *QueueEntry {
	if p.current == nil {
		return nil
	}

	finished := *p.current
	finished.Failures = 0

	if p.loopTrack {
		p.startTrack(finished, now)
		return p.Current()
	}

	if p.loopQueue && !p.queue.IsEmpty() {
		p.queue.Append(finished)
	}

	return p.startNext(now)
}

// Skip discards the current entry and starts the next one, ignoring both loop
// flags. Returns the skipped entry and the new now playing entry (nil if idle).
func (p *PlayerState) Skip(now time.Time) (QueueEntry, *QueueEntry, error) {
	if p.current == nil {
		return QueueEntry{}, nil, ErrNothingPlaying
	}

	skipped := *p.current
	return skipped, p.startNext(now), nil
}

// FailCurrent advances past an entry whose stream failed. loopTrack is
// ignored so a broken track cannot repeat forever. Under loopQueue the entry
// is recycled behind the remaining queue until it has failed maxFailures
// times in a row; with nothing else queued the player goes idle.
func (p *PlayerState) FailCurrent(now time.Time, maxFailures int) (QueueEntry, *QueueEntry, error) {
	if p.current == nil {
		return QueueEntry{}, nil, ErrNothingPlaying
	}

	failed := *p.current
	failed.Failures++

	if p.loopQueue && !p.queue.IsEmpty() && failed.Failures < maxFailures {
		p.queue.Append(failed)
	}

	return failed, p.startNext(now), nil
}

func (p *PlayerState) startNext(now time.Time) *QueueEntry {
	next := p.queue.PopFront()
	if next == nil {
		p.goIdle()
		return nil
	}
	p.startTrack(*next, now)
	return p.Current()
}

// Stop clears the pending queue and the current entry.
func (p *PlayerState) Stop() error {
	if p.current == nil && p.queue.IsEmpty() {
		return ErrNothingPlaying
	}
	p.queue.Clear()
	p.goIdle()
	return nil
}

// RemoveAt removes the entry at a 1-based pending position.
func (p *PlayerState) RemoveAt(position int) (QueueEntry, error) {
	removed := p.queue.RemoveAt(position - 1)
	if removed == nil {
		return QueueEntry{}, ErrInvalidPosition
	}
	return *removed, nil
}

// ClearQueue empties the pending queue, leaving now playing untouched.
// Returns the number of removed entries.
func (p *PlayerState) ClearQueue() (int, error) {
	if p.queue.IsEmpty() {
		return 0, ErrAlreadyEmpty
	}
	return p.queue.Clear(), nil
}

// Shuffle randomly permutes the pending queue.
func (p *PlayerState) Shuffle() error {
	if p.queue.IsEmpty() {
		return ErrEmptyQueue
	}
	p.queue.Shuffle()
	return nil
}

// Pause freezes the elapsed time of the current track.
func (p *PlayerState) Pause(now time.Time) error {
	if p.current == nil {
		return ErrNothingPlaying
	}
	if p.paused {
		return ErrAlreadyPaused
	}
	p.pausedElapsed = p.Elapsed(now)
	p.paused = true
	return nil
}

// Resume continues from the elapsed time captured by Pause.
func (p *PlayerState) Resume(now time.Time) error {
	if p.current == nil {
		return ErrNothingPlaying
	}
	if !p.paused {
		return ErrNotPaused
	}
	p.startedAt = now.Add(-p.pausedElapsed)
	p.paused = false
	p.pausedElapsed = 0
	return nil
}

// CanSeek validates a seek target without modifying the state.
func (p *PlayerState) CanSeek(target time.Duration) error {
	if p.current == nil {
		return ErrNothingPlaying
	}
	if p.current.Track.IsStream {
		return ErrNotSeekable
	}
	if target < 0 || target > p.current.Track.Duration {
		return ErrOutOfRange
	}
	return nil
}

// Seek moves the current track to target. A paused player stays paused.
func (p *PlayerState) Seek(target time.Duration, now time.Time) error {
	if err := p.CanSeek(target); err != nil {
		return err
	}
	p.startedAt = now.Add(-target)
	if p.paused {
		p.pausedElapsed = target
	}
	return nil
}

// ToggleLoopTrack flips loopTrack and returns the new value.
func (p *PlayerState) ToggleLoopTrack() (bool, error) {
	if p.current == nil {
		return false, ErrNothingPlaying
	}
	p.loopTrack = !p.loopTrack
	return p.loopTrack, nil
}

// ToggleLoopQueue flips loopQueue and returns the new value.
func (p *PlayerState) ToggleLoopQueue() (bool, error) {
	if p.current == nil {
		return false, ErrNothingPlaying
	}
	p.loopQueue = !p.loopQueue
	return p.loopQueue, nil
}

// Elapsed returns the playback position within the current track, clamped
// to the track length when it is known. Zero when idle.
func (p *PlayerState) Elapsed(now time.Time) time.Duration {
	if p.current == nil {
		return 0
	}

	elapsed := p.pausedElapsed
	if !p.paused {
		elapsed = now.Sub(p.startedAt)
	}

	elapsed = max(elapsed, 0)
	if length := p.current.Track.Length(); length > 0 {
		elapsed = min(elapsed, length)
	}
	return elapsed
}

// Remaining returns the time left in the current track, never negative.
func (p *PlayerState) Remaining(now time.Time) time.Duration {
	if p.current == nil {
		return 0
	}
	return max(p.current.Track.Length()-p.Elapsed(now), 0)
}

// TotalRemaining returns the time until the whole queue has played out.
func (p *PlayerState) TotalRemaining(now time.Time) time.Duration {
	return p.Remaining(now) + p.queue.TotalDuration()
}

// ETA returns the estimated wait before the entry at a 1-based pending
// position starts playing.
func (p *PlayerState) ETA(position int, now time.Time) time.Duration {
	return p.Remaining(now) + p.queue.DurationBefore(position-1)
}
