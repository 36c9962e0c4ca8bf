package usecases

import (
	"context"
	"fmt"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	VoiceChannelID        snowflake.ID // Optional: specific channel to join (0 means use user's channel)

	// KeepCurrentChannel leaves an existing connection where it is instead
	// of moving it to the resolved channel.
	KeepCurrentChannel bool
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID   snowflake.ID
	AlreadyConnected bool
}

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	GuildID snowflake.ID
}

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID *snowflake.ID // nil means disconnected
}

// VoiceChannelService handles voice channel operations.
type VoiceChannelService struct {
	repo            domain.PlayerStateRepository
	executor        ports.GuildExecutor
	voiceConnection ports.VoiceConnection
	voiceState      ports.VoiceStateProvider
	publisher       ports.EventPublisher
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	repo domain.PlayerStateRepository,
	executor ports.GuildExecutor,
	voiceConnection ports.VoiceConnection,
	voiceState ports.VoiceStateProvider,
	publisher ports.EventPublisher,
) *VoiceChannelService {
	return &VoiceChannelService{
		repo:            repo,
		executor:        executor,
		voiceConnection: voiceConnection,
		voiceState:      voiceState,
		publisher:       publisher,
	}
}

// Join joins the bot to a voice channel. Moving to another channel keeps the
// queue; joining for the first time creates an idle player state.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	// Determine which channel to join
	voiceChannelID := input.VoiceChannelID
	if voiceChannelID == 0 {
		userChannel, err := v.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
		if err != nil {
			return nil, err
		}
		if userChannel == 0 {
			return nil, ErrUserNotInVoice
		}
		voiceChannelID = userChannel
	}

	output := JoinOutput{VoiceChannelID: voiceChannelID}
	err := v.executor.Do(ctx, input.GuildID, func(ctx context.Context) error {
		state, err := v.repo.Get(ctx, input.GuildID)
		connected := err == nil

		if connected && input.KeepCurrentChannel {
			output.VoiceChannelID = state.GetVoiceChannelID()
		}

		// Already connected where we want to be - just update notification channel
		if connected && (input.KeepCurrentChannel || state.GetVoiceChannelID() == voiceChannelID) {
			output.AlreadyConnected = true
			state.SetNotificationChannelID(input.NotificationChannelID)
			return v.repo.Save(ctx, state)
		}

		if err := v.voiceConnection.JoinChannel(ctx, input.GuildID, voiceChannelID); err != nil {
			return fmt.Errorf("failed to join voice channel: %w", err)
		}

		if !connected {
			state = domain.NewPlayerState(input.GuildID, voiceChannelID, input.NotificationChannelID)
		} else {
			state.SetVoiceChannelID(voiceChannelID)
			state.SetNotificationChannelID(input.NotificationChannelID)
		}
		return v.repo.Save(ctx, state)
	})
	if err != nil {
		return nil, err
	}

	return &output, nil
}

// Leave leaves the voice channel and deletes the player state.
func (v *VoiceChannelService) Leave(ctx context.Context, input LeaveInput) error {
	err := v.executor.Do(ctx, input.GuildID, func(ctx context.Context) error {
		state, err := v.repo.Get(ctx, input.GuildID)
		if err != nil {
			return ErrNotConnected
		}

		if err := v.voiceConnection.LeaveChannel(ctx, input.GuildID); err != nil {
			return fmt.Errorf("failed to leave voice channel: %w", err)
		}

		return v.teardown(ctx, state)
	})
	if err != nil {
		return err
	}

	v.executor.Release(input.GuildID)
	return nil
}

// HandleBotVoiceStateChange handles external voice state changes (bot moved or disconnected).
// A disconnect tears the guild down as Leave does.
func (v *VoiceChannelService) HandleBotVoiceStateChange(
	ctx context.Context,
	input BotVoiceStateChangeInput,
) error {
	var released bool
	err := v.executor.Do(ctx, input.GuildID, func(ctx context.Context) error {
		state, err := v.repo.Get(ctx, input.GuildID)
		if err != nil {
			// No player state exists, nothing to do
			released = true
			return nil
		}

		if input.NewChannelID == nil {
			released = true
			return v.teardown(ctx, state)
		}

		// Bot was moved to a different channel
		if *input.NewChannelID != state.GetVoiceChannelID() {
			state.SetVoiceChannelID(*input.NewChannelID)
			return v.repo.Save(ctx, state)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if released {
		v.executor.Release(input.GuildID)
	}
	return nil
}

// teardown retires the "Now Playing" message and deletes the player state.
// In-flight operations for the guild find no state afterwards and discard
// their results.
func (v *VoiceChannelService) teardown(ctx context.Context, state *domain.PlayerState) error {
	if msg := state.GetNowPlayingMessage(); msg != nil && v.publisher != nil {
		v.publisher.PublishPlaybackFinished(domain.PlaybackFinishedEvent{
			GuildID: state.GetGuildID(),
			Message: *msg,
		})
	}

	return v.repo.Delete(ctx, state.GetGuildID())
}
