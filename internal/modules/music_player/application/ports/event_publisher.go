package ports

import (
	"context"

	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// EventPublisher defines the interface for publishing events asynchronously.
type EventPublisher interface {
	PublishPlaybackStarted(event domain.PlaybackStartedEvent)
	PublishPlaybackFinished(event domain.PlaybackFinishedEvent)
	PublishTrackEnded(event domain.TrackEndedEvent)
	PublishTrackFailed(event domain.TrackFailedEvent)
}

// EventSubscriber defines the interface for subscribing to events.
// Handlers run on the subscriber's dispatch goroutines.
type EventSubscriber interface {
	OnPlaybackStarted(handler func(context.Context, domain.PlaybackStartedEvent))
	OnPlaybackFinished(handler func(context.Context, domain.PlaybackFinishedEvent))
	OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent))
	OnTrackFailed(handler func(context.Context, domain.TrackFailedEvent))
}
