package usecases

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// NotificationChannelService handles the notification channel and the
// "Now Playing" message of a guild's player.
type NotificationChannelService struct {
	repo     domain.PlayerStateRepository
	executor ports.GuildExecutor
}

// NewNotificationChannelService creates a new NotificationChannelService.
func NewNotificationChannelService(
	repo domain.PlayerStateRepository,
	executor ports.GuildExecutor,
) *NotificationChannelService {
	return &NotificationChannelService{
		repo:     repo,
		executor: executor,
	}
}

// SetNotificationChannelInput contains the input for the Set use case.
type SetNotificationChannelInput struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
}

// Set updates the notification channel for the guild's player state.
func (n *NotificationChannelService) Set(
	ctx context.Context,
	input SetNotificationChannelInput,
) error {
	return updateState(ctx, n.executor, n.repo, input.GuildID,
		func(_ context.Context, state *domain.PlayerState) error {
			state.SetNotificationChannelID(input.ChannelID)
			return nil
		},
	)
}

// RecordNowPlayingInput contains the input for the RecordNowPlaying use case.
type RecordNowPlayingInput struct {
	GuildID     snowflake.ID
	PlaybackSeq uint64 // playback the message was sent for
	ChannelID   snowflake.ID
	MessageID   snowflake.ID
}

// RecordNowPlaying stores a sent "Now Playing" message so it can be deleted
// when the track finishes. It returns false when the playback the message
// announces is already over; the caller should delete the message.
func (n *NotificationChannelService) RecordNowPlaying(
	ctx context.Context,
	input RecordNowPlayingInput,
) (bool, error) {
	var recorded bool
	err := updateState(ctx, n.executor, n.repo, input.GuildID,
		func(_ context.Context, state *domain.PlayerState) error {
			msg := domain.NewNowPlayingMessage(input.ChannelID, input.MessageID, input.PlaybackSeq)
			recorded = state.RecordNowPlayingMessage(msg)
			return nil
		},
	)
	if errors.Is(err, ErrNotConnected) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return recorded, nil
}
