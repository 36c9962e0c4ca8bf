package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// PauseInput contains the input for the Pause use case.
type PauseInput struct {
	GuildID snowflake.ID
}

// ResumeInput contains the input for the Resume use case.
type ResumeInput struct {
	GuildID snowflake.ID
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID snowflake.ID
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	Skipped domain.QueueEntry
	Next    *domain.QueueEntry // nil if the queue ran out
}

// StopInput contains the input for the Stop use case.
type StopInput struct {
	GuildID snowflake.ID
}

// SeekInput contains the input for the Seek use case.
type SeekInput struct {
	GuildID  snowflake.ID
	Position time.Duration
	Chapter  string // when set, seek to the start of this chapter instead of Position
}

// SeekOutput contains the result of the Seek use case.
type SeekOutput struct {
	Position time.Duration
	Chapter  *domain.Chapter // chapter containing Position, if any
}

// ToggleLoopInput contains the input for the loop toggle use cases.
type ToggleLoopInput struct {
	GuildID snowflake.ID
}

// ToggleLoopOutput contains the result of the loop toggle use cases.
type ToggleLoopOutput struct {
	Enabled bool
}

// NowPlayingInput contains the input for the NowPlaying use case.
type NowPlayingInput struct {
	GuildID snowflake.ID
}

// NowPlayingOutput contains the result of the NowPlaying use case.
type NowPlayingOutput struct {
	Entry     domain.QueueEntry
	Elapsed   time.Duration
	Paused    bool
	LoopTrack bool
	LoopQueue bool
	Chapter   *domain.Chapter
	UpNext    *domain.QueueEntry
}

// TrackEndedInput contains the input for handling the end of a stream.
type TrackEndedInput struct {
	GuildID     snowflake.ID
	TrackID     domain.TrackID
	PlaybackSeq uint64
	Reason      domain.TrackEndReason
}

// PlaybackService handles playback operations.
type PlaybackService struct {
	repo        domain.PlayerStateRepository
	executor    ports.GuildExecutor
	audioPlayer ports.AudioPlayer
	driver      *playbackDriver
	now         func() time.Time
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	repo domain.PlayerStateRepository,
	executor ports.GuildExecutor,
	audioPlayer ports.AudioPlayer,
	publisher ports.EventPublisher,
	maxFailures int,
) *PlaybackService {
	return &PlaybackService{
		repo:        repo,
		executor:    executor,
		audioPlayer: audioPlayer,
		driver:      newPlaybackDriver(audioPlayer, publisher, maxFailures),
		now:         time.Now,
	}
}

// Pause pauses the current playback.
func (p *PlaybackService) Pause(ctx context.Context, input PauseInput) error {
	return updateState(ctx, p.executor, p.repo, input.GuildID,
		func(ctx context.Context, state *domain.PlayerState) error {
			if state.IsIdle() {
				return ErrNothingPlaying
			}
			if state.IsPaused() {
				return ErrAlreadyPaused
			}

			if err := p.audioPlayer.Pause(ctx, input.GuildID); err != nil {
				return fmt.Errorf("failed to pause playback: %w", err)
			}

			return state.Pause(p.now())
		},
	)
}

// Resume resumes the paused playback.
func (p *PlaybackService) Resume(ctx context.Context, input ResumeInput) error {
	return updateState(ctx, p.executor, p.repo, input.GuildID,
		func(ctx context.Context, state *domain.PlayerState) error {
			if state.IsIdle() {
				return ErrNothingPlaying
			}
			if !state.IsPaused() {
				return ErrNotPaused
			}

			if err := p.audioPlayer.Resume(ctx, input.GuildID); err != nil {
				return fmt.Errorf("failed to resume playback: %w", err)
			}

			return state.Resume(p.now())
		},
	)
}

// Skip skips the current track and plays the next one from the queue.
// Skip always advances, regardless of both loop flags.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	var output SkipOutput
	err := updateState(ctx, p.executor, p.repo, input.GuildID,
		func(ctx context.Context, state *domain.PlayerState) error {
			if state.IsIdle() {
				return ErrNothingPlaying
			}

			now := p.now()
			p.driver.finishCurrent(state)

			skipped, next, err := state.Skip(now)
			if err != nil {
				return err
			}
			output.Skipped = skipped

			if next == nil {
				p.driver.stop(ctx, state)
				return nil
			}

			p.driver.playCurrent(ctx, state, now)
			output.Next = state.Current()
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return &output, nil
}

// Stop clears the pending queue and stops the current track.
func (p *PlaybackService) Stop(ctx context.Context, input StopInput) error {
	return updateState(ctx, p.executor, p.repo, input.GuildID,
		func(ctx context.Context, state *domain.PlayerState) error {
			if state.IsIdle() && state.PendingLen() == 0 {
				return ErrNothingPlaying
			}

			p.driver.finishCurrent(state)
			if err := state.Stop(); err != nil {
				return err
			}
			p.driver.stop(ctx, state)
			return nil
		},
	)
}

// Seek moves the current track to a position or to the start of a chapter.
func (p *PlaybackService) Seek(ctx context.Context, input SeekInput) (*SeekOutput, error) {
	var output SeekOutput
	err := updateState(ctx, p.executor, p.repo, input.GuildID,
		func(ctx context.Context, state *domain.PlayerState) error {
			current := state.Current()
			if current == nil {
				return ErrNothingPlaying
			}

			target := input.Position
			if input.Chapter != "" {
				chapter, ok := current.Track.FindChapter(input.Chapter)
				if !ok {
					return ErrChapterNotFound
				}
				target = chapter.Start
			}

			if err := state.CanSeek(target); err != nil {
				return err
			}

			if err := p.audioPlayer.Seek(ctx, input.GuildID, target); err != nil {
				return fmt.Errorf("%w: %v", ErrTransport, err)
			}

			if err := state.Seek(target, p.now()); err != nil {
				return err
			}

			output = SeekOutput{
				Position: target,
				Chapter:  current.Track.ChapterAt(target),
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return &output, nil
}

// ToggleLoopTrack flips whether the current track repeats.
func (p *PlaybackService) ToggleLoopTrack(
	ctx context.Context,
	input ToggleLoopInput,
) (*ToggleLoopOutput, error) {
	return p.toggle(ctx, input.GuildID, (*domain.PlayerState).ToggleLoopTrack)
}

// ToggleLoopQueue flips whether finished tracks are recycled to the queue.
func (p *PlaybackService) ToggleLoopQueue(
	ctx context.Context,
	input ToggleLoopInput,
) (*ToggleLoopOutput, error) {
	return p.toggle(ctx, input.GuildID, (*domain.PlayerState).ToggleLoopQueue)
}

func (p *PlaybackService) toggle(
	ctx context.Context,
	guildID snowflake.ID,
	flip func(*domain.PlayerState) (bool, error),
) (*ToggleLoopOutput, error) {
	var enabled bool
	err := updateState(ctx, p.executor, p.repo, guildID,
		func(_ context.Context, state *domain.PlayerState) error {
			var err error
			enabled, err = flip(state)
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	return &ToggleLoopOutput{Enabled: enabled}, nil
}

// NowPlaying returns the current track and its playback position.
func (p *PlaybackService) NowPlaying(
	ctx context.Context,
	input NowPlayingInput,
) (*NowPlayingOutput, error) {
	var output NowPlayingOutput
	err := viewState(ctx, p.executor, p.repo, input.GuildID, func(state *domain.PlayerState) error {
		current := state.Current()
		if current == nil {
			return ErrNothingPlaying
		}

		elapsed := state.Elapsed(p.now())
		output = NowPlayingOutput{
			Entry:     *current,
			Elapsed:   elapsed,
			Paused:    state.IsPaused(),
			LoopTrack: state.LoopTrack(),
			LoopQueue: state.LoopQueue(),
			Chapter:   current.Track.ChapterAt(elapsed),
		}
		if pending := state.Pending(); len(pending) > 0 {
			output.UpNext = &pending[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &output, nil
}

// HandleTrackEnded advances the queue after the audio transport reports the
// end of a stream. Ends caused by the bot itself (stop, replace) and ends of
// an earlier playback are ignored, even when the same track plays again.
func (p *PlaybackService) HandleTrackEnded(ctx context.Context, input TrackEndedInput) error {
	if !input.Reason.ShouldAdvanceQueue() {
		return nil
	}

	err := updateState(ctx, p.executor, p.repo, input.GuildID,
		func(ctx context.Context, state *domain.PlayerState) error {
			current := state.Current()
			if current == nil ||
				current.Track.ID != input.TrackID ||
				state.PlaybackSeq() != input.PlaybackSeq {
				slog.Debug(
					"ignoring end of a track that is not playing",
					"guild", input.GuildID,
					"track", input.TrackID,
					"playback_seq", input.PlaybackSeq,
				)
				return nil
			}

			now := p.now()
			p.driver.finishCurrent(state)

			if input.Reason.IsFailure() {
				p.driver.fail(state, now, ErrTransport.Error())
			} else {
				state.Advance(now)
			}

			p.driver.playCurrent(ctx, state, now)
			return nil
		},
	)
	if errors.Is(err, ErrNotConnected) {
		// The bot left the channel before the event arrived.
		return nil
	}
	return err
}
