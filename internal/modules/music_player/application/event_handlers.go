package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// PlaybackEventHandler advances the queue when the audio transport reports
// the end of a stream. It goes through PlaybackService, so the advance is
// serialized with commands for the same guild.
type PlaybackEventHandler struct {
	playback   *usecases.PlaybackService
	subscriber ports.EventSubscriber
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	playback *usecases.PlaybackService,
	subscriber ports.EventSubscriber,
) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		playback:   playback,
		subscriber: subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *PlaybackEventHandler) Start() {
	h.subscriber.OnTrackEnded(h.handleTrackEnded)

	slog.Debug("playback event handlers registered")
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	slog.Debug(
		"track ended",
		"guild", event.GuildID,
		"track", event.TrackID,
		"reason", event.Reason,
	)

	err := h.playback.HandleTrackEnded(ctx, usecases.TrackEndedInput{
		GuildID:     event.GuildID,
		TrackID:     event.TrackID,
		PlaybackSeq: event.PlaybackSeq,
		Reason:      event.Reason,
	})
	if err != nil {
		slog.Error(
			"failed to advance queue after track ended",
			"guild", event.GuildID,
			"track", event.TrackID,
			"error", err,
		)
	}
}

// NotificationEventHandler posts and retires the guild's chat notifications.
type NotificationEventHandler struct {
	notificationChannel *usecases.NotificationChannelService
	subscriber          ports.EventSubscriber
	notifier            ports.NotificationSender
	userInfoProvider    ports.UserInfoProvider
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
func NewNotificationEventHandler(
	notificationChannel *usecases.NotificationChannelService,
	subscriber ports.EventSubscriber,
	notifier ports.NotificationSender,
	userInfoProvider ports.UserInfoProvider,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		notificationChannel: notificationChannel,
		subscriber:          subscriber,
		notifier:            notifier,
		userInfoProvider:    userInfoProvider,
	}
}

// Start registers event handlers with the subscriber.
func (h *NotificationEventHandler) Start() {
	h.subscriber.OnPlaybackStarted(h.handlePlaybackStarted)
	h.subscriber.OnPlaybackFinished(h.handlePlaybackFinished)
	h.subscriber.OnTrackFailed(h.handleTrackFailed)

	slog.Debug("notification event handlers registered")
}

func (h *NotificationEventHandler) handlePlaybackStarted(
	ctx context.Context,
	event domain.PlaybackStartedEvent,
) {
	if event.NotificationChannelID == 0 {
		return
	}

	info := h.buildNowPlayingInfo(event)
	messageID, err := h.notifier.SendNowPlaying(event.NotificationChannelID, info)
	if err != nil {
		slog.Error(
			"failed to send now playing notification",
			"guild", event.GuildID,
			"track", event.Entry.Track.ID,
			"error", err,
		)
		return
	}

	recorded, err := h.notificationChannel.RecordNowPlaying(ctx, usecases.RecordNowPlayingInput{
		GuildID:     event.GuildID,
		PlaybackSeq: event.PlaybackSeq,
		ChannelID:   event.NotificationChannelID,
		MessageID:   messageID,
	})
	if err != nil {
		slog.Warn("failed to record now playing message", "guild", event.GuildID, "error", err)
	}
	if recorded {
		return
	}

	// The track finished before the message was stored.
	if err := h.notifier.DeleteMessage(event.NotificationChannelID, messageID); err != nil {
		slog.Warn(
			"failed to delete stale now playing message",
			"guild", event.GuildID,
			"message", messageID,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) buildNowPlayingInfo(
	event domain.PlaybackStartedEvent,
) *ports.NowPlayingInfo {
	track := event.Entry.Track

	info := &ports.NowPlayingInfo{
		Identifier:  string(track.ID),
		Title:       track.Title,
		Artist:      track.Artist,
		Duration:    track.FormattedDuration(),
		URI:         track.URI,
		ArtworkURL:  track.ArtworkURL,
		SourceName:  track.SourceName,
		IsStream:    track.IsStream,
		RequesterID: event.Entry.RequesterID,
		EnqueuedAt:  event.Entry.EnqueuedAt,
		LoopTrack:   event.LoopTrack,
		LoopQueue:   event.LoopQueue,
	}

	if event.UpNext != nil {
		info.UpNext = event.UpNext.Track.Title
	}

	if h.userInfoProvider != nil && event.Entry.RequesterID != 0 {
		user, err := h.userInfoProvider.GetUserInfo(event.GuildID, event.Entry.RequesterID)
		if err != nil {
			slog.Debug(
				"failed to fetch requester info",
				"guild", event.GuildID,
				"user", event.Entry.RequesterID,
				"error", err,
			)
		} else {
			info.RequesterName = user.DisplayName
			info.RequesterAvatarURL = user.AvatarURL
		}
	}

	return info
}

func (h *NotificationEventHandler) handlePlaybackFinished(
	_ context.Context,
	event domain.PlaybackFinishedEvent,
) {
	err := h.notifier.DeleteMessage(event.Message.ChannelID, event.Message.MessageID)
	if err != nil {
		slog.Warn(
			"failed to delete now playing message",
			"guild", event.GuildID,
			"message", event.Message.MessageID,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) handleTrackFailed(
	_ context.Context,
	event domain.TrackFailedEvent,
) {
	if event.NotificationChannelID == 0 {
		return
	}

	message := fmt.Sprintf("Failed to play **%s**, skipping.", event.Track.Title)
	if event.Reason != "" {
		message = fmt.Sprintf("Failed to play **%s**: %s. Skipping.", event.Track.Title, event.Reason)
	}

	if err := h.notifier.SendError(event.NotificationChannelID, message); err != nil {
		slog.Warn(
			"failed to send track failure notification",
			"guild", event.GuildID,
			"track", event.Track.ID,
			"error", err,
		)
	}
}
