package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// DefaultMaxTrackFailures is the number of consecutive transport failures
// after which a looped entry is dropped from the queue.
const DefaultMaxTrackFailures = 3

// playbackDriver applies now playing changes of a PlayerState to the audio
// player and announces them. It must only be used from inside a guild job.
type playbackDriver struct {
	audioPlayer ports.AudioPlayer
	publisher   ports.EventPublisher
	maxFailures int
}

func newPlaybackDriver(
	audioPlayer ports.AudioPlayer,
	publisher ports.EventPublisher,
	maxFailures int,
) *playbackDriver {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxTrackFailures
	}
	return &playbackDriver{
		audioPlayer: audioPlayer,
		publisher:   publisher,
		maxFailures: maxFailures,
	}
}

// finishCurrent retires the "Now Playing" message of the current track.
func (d *playbackDriver) finishCurrent(state *domain.PlayerState) {
	msg := state.GetNowPlayingMessage()
	if msg == nil {
		return
	}

	if d.publisher != nil {
		d.publisher.PublishPlaybackFinished(domain.PlaybackFinishedEvent{
			GuildID: state.GetGuildID(),
			Message: *msg,
		})
	}
	state.ClearNowPlayingMessage()
}

// playCurrent streams the now playing entry. When the audio player rejects
// it, the entry is failed and the next one is tried, until one plays or the
// player goes idle.
func (d *playbackDriver) playCurrent(ctx context.Context, state *domain.PlayerState, now time.Time) {
	for entry := state.Current(); entry != nil; entry = state.Current() {
		err := d.audioPlayer.Play(ctx, state.GetGuildID(), entry.Track, 0, state.PlaybackSeq())
		if err == nil {
			d.publishStarted(state, *entry)
			return
		}

		slog.Error(
			"failed to play track",
			"guild", state.GetGuildID(),
			"track", entry.Track.Title,
			"error", err,
		)
		d.fail(state, now, err.Error())
	}
}

// fail advances past the now playing entry after a transport failure and
// reports it to the notification channel.
func (d *playbackDriver) fail(state *domain.PlayerState, now time.Time, reason string) {
	failed, _, err := state.FailCurrent(now, d.maxFailures)
	if err != nil {
		return
	}

	if d.publisher != nil {
		d.publisher.PublishTrackFailed(domain.TrackFailedEvent{
			GuildID:               state.GetGuildID(),
			Track:                 failed.Track,
			NotificationChannelID: state.GetNotificationChannelID(),
			Reason:                reason,
		})
	}
}

func (d *playbackDriver) publishStarted(state *domain.PlayerState, entry domain.QueueEntry) {
	if d.publisher == nil {
		return
	}

	var upNext *domain.QueueEntry
	if pending := state.Pending(); len(pending) > 0 {
		upNext = &pending[0]
	}

	d.publisher.PublishPlaybackStarted(domain.PlaybackStartedEvent{
		GuildID:               state.GetGuildID(),
		Entry:                 entry,
		PlaybackSeq:           state.PlaybackSeq(),
		NotificationChannelID: state.GetNotificationChannelID(),
		LoopTrack:             state.LoopTrack(),
		LoopQueue:             state.LoopQueue(),
		UpNext:                upNext,
	})
}

// stop halts the audio player after the state went idle. The state has
// already moved on, so a failure is only logged.
func (d *playbackDriver) stop(ctx context.Context, state *domain.PlayerState) {
	if err := d.audioPlayer.Stop(ctx, state.GetGuildID()); err != nil {
		slog.Warn("failed to stop audio playback", "guild", state.GetGuildID(), "error", err)
	}
}
