package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
	"github.com/sglre6355/rythm/internal/modules/music_player/infrastructure"
)

const (
	testGuildID   snowflake.ID = 1
	testChannelID snowflake.ID = 20
	testVoiceID   snowflake.ID = 10
	testUserID    snowflake.ID = 100
	otherUserID   snowflake.ID = 200
)

type inlineExecutor struct{}

func (inlineExecutor) Do(ctx context.Context, _ snowflake.ID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (inlineExecutor) Release(snowflake.ID) {}

type mockAudioPlayer struct {
	played []domain.TrackID
	seeked []time.Duration
	paused int
}

func (m *mockAudioPlayer) Play(_ context.Context, _ snowflake.ID, track domain.Track, _ time.Duration, _ uint64) error {
	m.played = append(m.played, track.ID)
	return nil
}

func (m *mockAudioPlayer) Seek(_ context.Context, _ snowflake.ID, position time.Duration) error {
	m.seeked = append(m.seeked, position)
	return nil
}

func (m *mockAudioPlayer) Stop(context.Context, snowflake.ID) error { return nil }

func (m *mockAudioPlayer) Pause(context.Context, snowflake.ID) error {
	m.paused++
	return nil
}

func (m *mockAudioPlayer) Resume(context.Context, snowflake.ID) error { return nil }

type mockVoiceConnection struct {
	joined  []snowflake.ID
	joinErr error
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, channelID snowflake.ID) error {
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, channelID)
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(context.Context, snowflake.ID) error { return nil }

type mockVoiceState struct {
	channels map[snowflake.ID]snowflake.ID
}

func (m *mockVoiceState) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	return m.channels[userID], nil
}

type mockResolver struct {
	result  *ports.LoadResult
	queries []string
}

func (m *mockResolver) LoadTracks(_ context.Context, query string) (*ports.LoadResult, error) {
	m.queries = append(m.queries, query)
	if m.result == nil {
		return &ports.LoadResult{Type: ports.LoadTypeEmpty}, nil
	}
	return m.result, nil
}

type noopPublisher struct{}

func (noopPublisher) PublishPlaybackStarted(domain.PlaybackStartedEvent)   {}
func (noopPublisher) PublishPlaybackFinished(domain.PlaybackFinishedEvent) {}
func (noopPublisher) PublishTrackEnded(domain.TrackEndedEvent)             {}
func (noopPublisher) PublishTrackFailed(domain.TrackFailedEvent)           {}

func trackInfo(id string) *ports.TrackInfo {
	return &ports.TrackInfo{
		Identifier: id,
		Encoded:    "encoded-" + id,
		Title:      "Track " + id,
		Artist:     "Artist",
		Duration:   3 * time.Minute,
		URI:        "https://www.youtube.com/watch?v=" + id,
		SourceName: "youtube",
	}
}

func testTrack(id string) domain.Track {
	return domain.Track{
		ID:       domain.TrackID(id),
		Encoded:  "encoded-" + id,
		Title:    "Track " + id,
		Artist:   "Artist",
		Duration: 3 * time.Minute,
		URI:      "https://www.youtube.com/watch?v=" + id,
	}
}

// fixture wires the real use cases over in-memory infrastructure and mocks.
type fixture struct {
	repo       *infrastructure.MemoryRepository
	audio      *mockAudioPlayer
	connection *mockVoiceConnection
	voiceState *mockVoiceState
	resolver   *mockResolver

	voiceChannel *usecases.VoiceChannelService
	playback     *usecases.PlaybackService
	queue        *usecases.QueueService

	handlers     *CommandHandlers
	autocomplete *AutocompleteHandler
	events       *EventHandlers
}

func newFixture() *fixture {
	f := &fixture{
		repo:       infrastructure.NewMemoryRepository(),
		audio:      &mockAudioPlayer{},
		connection: &mockVoiceConnection{},
		voiceState: &mockVoiceState{channels: map[snowflake.ID]snowflake.ID{}},
		resolver:   &mockResolver{},
	}

	executor := inlineExecutor{}
	publisher := noopPublisher{}

	f.voiceChannel = usecases.NewVoiceChannelService(f.repo, executor, f.connection, f.voiceState, publisher)
	f.playback = usecases.NewPlaybackService(f.repo, executor, f.audio, publisher, 3)
	f.queue = usecases.NewQueueService(f.repo, executor, f.audio, publisher, 3)
	trackLoader := usecases.NewTrackLoaderService(f.resolver)
	notificationChannel := usecases.NewNotificationChannelService(f.repo, executor)
	autocomplete := usecases.NewAutocompleteService(f.repo, executor, f.resolver)

	throttle := NewSearchThrottle(100, 100)

	f.handlers = NewCommandHandlers(
		f.voiceChannel,
		f.playback,
		f.queue,
		trackLoader,
		notificationChannel,
		throttle,
		Options{
			SearchResults:    10,
			SearchTimeout:    time.Minute,
			QueuePageTimeout: time.Minute,
		},
	)
	f.autocomplete = NewAutocompleteHandler(autocomplete, f.playback, throttle)
	f.events = NewEventHandlers(999, f.voiceChannel)

	return f
}

// connect creates a connected guild, optionally playing the given tracks.
func (f *fixture) connect(trackIDs ...string) *domain.PlayerState {
	state := domain.NewPlayerState(testGuildID, testVoiceID, testChannelID)
	_ = f.repo.Save(context.Background(), state)

	if len(trackIDs) > 0 {
		tracks := make([]domain.Track, len(trackIDs))
		for i, id := range trackIDs {
			tracks[i] = testTrack(id)
		}
		_, _ = f.queue.Add(context.Background(), usecases.QueueAddInput{
			GuildID:     testGuildID,
			Tracks:      tracks,
			RequesterID: testUserID,
		})
	}
	return state
}

func member(userID snowflake.ID) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: userID.String()}}
}

func commandInteraction(
	name string,
	options ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   testGuildID.String(),
		ChannelID: testChannelID.String(),
		Member:    member(testUserID),
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
		},
	}}
}

func autocompleteInteraction(
	name string,
	options ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.InteractionCreate {
	i := commandInteraction(name, options...)
	i.Type = discordgo.InteractionApplicationCommandAutocomplete
	return i
}

func componentInteraction(userID snowflake.ID, customID string, values ...string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   testGuildID.String(),
		ChannelID: testChannelID.String(),
		Member:    member(userID),
		Data: discordgo.MessageComponentInteractionData{
			CustomID: customID,
			Values:   values,
		},
	}}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func intOption(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

func focused(opt *discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	opt.Focused = true
	return opt
}

// customIDs collects the custom IDs of every component in a response.
func customIDs(components []discordgo.MessageComponent) []string {
	var ids []string
	for _, c := range components {
		row, ok := c.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			switch v := inner.(type) {
			case discordgo.Button:
				ids = append(ids, v.CustomID)
			case discordgo.SelectMenu:
				ids = append(ids, v.CustomID)
			default:
				panic(fmt.Sprintf("unexpected component %T", inner))
			}
		}
	}
	return ids
}
