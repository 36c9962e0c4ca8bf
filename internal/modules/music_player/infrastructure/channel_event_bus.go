package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// topic is a buffered channel of one event type with its registered handlers.
// Events are handed to one lane per guild: a guild's events are handled in
// publish order, and a slow handler only holds up its own guild.
type topic[E any] struct {
	name       string
	events     chan E
	guildOf    func(E) snowflake.ID
	laneBuffer int
	handlers   []func(context.Context, E)
}

func newTopic[E any](name string, bufferSize int, guildOf func(E) snowflake.ID) *topic[E] {
	return &topic[E]{
		name:       name,
		events:     make(chan E, bufferSize),
		guildOf:    guildOf,
		laneBuffer: bufferSize,
	}
}

// ChannelEventBus provides a channel-based event bus for async event handling.
// It implements both EventPublisher and EventSubscriber interfaces.
type ChannelEventBus struct {
	playbackStarted  *topic[domain.PlaybackStartedEvent]
	playbackFinished *topic[domain.PlaybackFinishedEvent]
	trackEnded       *topic[domain.TrackEndedEvent]
	trackFailed      *topic[domain.TrackFailedEvent]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		playbackStarted: newTopic("PlaybackStarted", bufferSize,
			func(e domain.PlaybackStartedEvent) snowflake.ID { return e.GuildID }),
		playbackFinished: newTopic("PlaybackFinished", bufferSize,
			func(e domain.PlaybackFinishedEvent) snowflake.ID { return e.GuildID }),
		trackEnded: newTopic("TrackEnded", bufferSize,
			func(e domain.TrackEndedEvent) snowflake.ID { return e.GuildID }),
		trackFailed: newTopic("TrackFailed", bufferSize,
			func(e domain.TrackFailedEvent) snowflake.ID { return e.GuildID }),
		ctx:              ctx,
		cancel:           cancel,
	}

	bus.wg.Add(4)
	go dispatch(bus, bus.playbackStarted)
	go dispatch(bus, bus.playbackFinished)
	go dispatch(bus, bus.trackEnded)
	go dispatch(bus, bus.trackFailed)

	return bus
}

// dispatch routes events of t to per-guild lanes until the bus is closed.
func dispatch[E any](b *ChannelEventBus, t *topic[E]) {
	defer b.wg.Done()

	lanes := make(map[snowflake.ID]chan E)
	defer func() {
		for _, lane := range lanes {
			close(lane)
		}
	}()

	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-t.events:
			if !ok {
				return
			}

			guildID := t.guildOf(event)
			lane, ok := lanes[guildID]
			if !ok {
				lane = make(chan E, t.laneBuffer)
				lanes[guildID] = lane
				b.wg.Add(1)
				go deliver(b, t, lane)
			}

			select {
			case lane <- event:
			case <-b.ctx.Done():
				return
			}
		}
	}
}

// deliver runs t's handlers for one guild's events.
func deliver[E any](b *ChannelEventBus, t *topic[E], lane <-chan E) {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-lane:
			if !ok {
				return
			}
			b.mu.RLock()
			handlers := t.handlers
			b.mu.RUnlock()
			for _, handler := range handlers {
				handler(b.ctx, event)
			}
		}
	}
}

// publish enqueues event without blocking. Events published to a full or
// closed bus are dropped with a warning.
func publish[E any](b *ChannelEventBus, t *topic[E], event E, attrs ...any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", t.name)
		return
	}

	select {
	case t.events <- event:
		slog.Debug("published event", append([]any{"type", t.name}, attrs...)...)
	default:
		slog.Warn("event buffer full, dropping event", append([]any{"type", t.name}, attrs...)...)
	}
}

func subscribe[E any](b *ChannelEventBus, t *topic[E], handler func(context.Context, E)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t.handlers = append(t.handlers, handler)
}

// --- EventPublisher interface ---

// PublishPlaybackStarted publishes a PlaybackStartedEvent.
func (b *ChannelEventBus) PublishPlaybackStarted(event domain.PlaybackStartedEvent) {
	publish(b, b.playbackStarted, event, "guild", event.GuildID, "seq", event.PlaybackSeq)
}

// PublishPlaybackFinished publishes a PlaybackFinishedEvent.
func (b *ChannelEventBus) PublishPlaybackFinished(event domain.PlaybackFinishedEvent) {
	publish(b, b.playbackFinished, event, "guild", event.GuildID)
}

// PublishTrackEnded publishes a TrackEndedEvent.
func (b *ChannelEventBus) PublishTrackEnded(event domain.TrackEndedEvent) {
	publish(b, b.trackEnded, event, "guild", event.GuildID, "reason", event.Reason)
}

// PublishTrackFailed publishes a TrackFailedEvent.
func (b *ChannelEventBus) PublishTrackFailed(event domain.TrackFailedEvent) {
	publish(b, b.trackFailed, event, "guild", event.GuildID, "track", event.Track.ID)
}

// --- EventSubscriber interface ---

// OnPlaybackStarted registers a handler for PlaybackStartedEvent.
func (b *ChannelEventBus) OnPlaybackStarted(
	handler func(context.Context, domain.PlaybackStartedEvent),
) {
	subscribe(b, b.playbackStarted, handler)
}

// OnPlaybackFinished registers a handler for PlaybackFinishedEvent.
func (b *ChannelEventBus) OnPlaybackFinished(
	handler func(context.Context, domain.PlaybackFinishedEvent),
) {
	subscribe(b, b.playbackFinished, handler)
}

// OnTrackEnded registers a handler for TrackEndedEvent.
func (b *ChannelEventBus) OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent)) {
	subscribe(b, b.trackEnded, handler)
}

// OnTrackFailed registers a handler for TrackFailedEvent.
func (b *ChannelEventBus) OnTrackFailed(handler func(context.Context, domain.TrackFailedEvent)) {
	subscribe(b, b.trackFailed, handler)
}

// Close closes all event channels and stops dispatchers.
// After calling Close, publishing will no longer send events.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()

	close(b.playbackStarted.events)
	close(b.playbackFinished.events)
	close(b.trackEnded.events)
	close(b.trackFailed.events)

	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
