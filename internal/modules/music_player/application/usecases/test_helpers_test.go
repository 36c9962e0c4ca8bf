package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

var errStateNotFound = errors.New("player state not found")

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mockTrack(id string) domain.Track {
	return domain.Track{
		ID:       domain.TrackID(id),
		Encoded:  "encoded-" + id,
		Title:    "Track " + id,
		Artist:   "Artist",
		Duration: 3 * time.Minute,
	}
}

type mockRepository struct {
	states  map[snowflake.ID]*domain.PlayerState
	deleted []snowflake.ID
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		states: make(map[snowflake.ID]*domain.PlayerState),
	}
}

func (m *mockRepository) Get(_ context.Context, guildID snowflake.ID) (*domain.PlayerState, error) {
	state, ok := m.states[guildID]
	if !ok {
		return nil, errStateNotFound
	}
	return state, nil
}

func (m *mockRepository) Save(_ context.Context, state *domain.PlayerState) error {
	m.states[state.GetGuildID()] = state
	return nil
}

func (m *mockRepository) Delete(_ context.Context, guildID snowflake.ID) error {
	m.deleted = append(m.deleted, guildID)
	delete(m.states, guildID)
	return nil
}

// createConnectedState creates a PlayerState with the given IDs and saves it to the mock repository.
// Returns the state for further modification (e.g., adding tracks).
func (m *mockRepository) createConnectedState(
	guildID, voiceChannelID, notificationChannelID snowflake.ID,
) *domain.PlayerState {
	state := domain.NewPlayerState(guildID, voiceChannelID, notificationChannelID)
	m.states[guildID] = state
	return state
}

// inlineExecutor runs jobs on the calling goroutine.
type inlineExecutor struct {
	released []snowflake.ID
}

func (e *inlineExecutor) Do(
	ctx context.Context,
	_ snowflake.ID,
	fn func(ctx context.Context) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (e *inlineExecutor) Release(guildID snowflake.ID) {
	e.released = append(e.released, guildID)
}

type mockAudioPlayer struct {
	played    []domain.TrackID
	playSeqs  []uint64
	playErr   error
	playErrs  map[domain.TrackID]error // per-track failures, checked before playErr
	seeked    []time.Duration
	seekErr   error
	stopped   int
	stopErr   error
	pauseErr  error
	resumeErr error
	paused    int
	resumed   int
}

func (m *mockAudioPlayer) Play(
	_ context.Context,
	_ snowflake.ID,
	track domain.Track,
	_ time.Duration,
	playbackSeq uint64,
) error {
	m.played = append(m.played, track.ID)
	m.playSeqs = append(m.playSeqs, playbackSeq)
	if err, ok := m.playErrs[track.ID]; ok {
		return err
	}
	return m.playErr
}

func (m *mockAudioPlayer) Seek(_ context.Context, _ snowflake.ID, position time.Duration) error {
	if m.seekErr != nil {
		return m.seekErr
	}
	m.seeked = append(m.seeked, position)
	return nil
}

func (m *mockAudioPlayer) Stop(_ context.Context, _ snowflake.ID) error {
	m.stopped++
	return m.stopErr
}

func (m *mockAudioPlayer) Pause(_ context.Context, _ snowflake.ID) error {
	if m.pauseErr != nil {
		return m.pauseErr
	}
	m.paused++
	return nil
}

func (m *mockAudioPlayer) Resume(_ context.Context, _ snowflake.ID) error {
	if m.resumeErr != nil {
		return m.resumeErr
	}
	m.resumed++
	return nil
}

type mockVoiceConnection struct {
	joinErr  error
	leaveErr error
	joined   []snowflake.ID
	left     int
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, channelID snowflake.ID) error {
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, channelID)
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	if m.leaveErr != nil {
		return m.leaveErr
	}
	m.left++
	return nil
}

type mockTrackResolver struct {
	loadErr    error
	loadResult *ports.LoadResult
	lastQuery  string
}

func (m *mockTrackResolver) LoadTracks(_ context.Context, query string) (*ports.LoadResult, error) {
	m.lastQuery = query
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.loadResult, nil
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	_, userID snowflake.ID,
) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

type mockEventPublisher struct {
	playbackStarted  []domain.PlaybackStartedEvent
	playbackFinished []domain.PlaybackFinishedEvent
	trackEnded       []domain.TrackEndedEvent
	trackFailed      []domain.TrackFailedEvent
}

func (m *mockEventPublisher) PublishPlaybackStarted(event domain.PlaybackStartedEvent) {
	m.playbackStarted = append(m.playbackStarted, event)
}

func (m *mockEventPublisher) PublishPlaybackFinished(event domain.PlaybackFinishedEvent) {
	m.playbackFinished = append(m.playbackFinished, event)
}

func (m *mockEventPublisher) PublishTrackEnded(event domain.TrackEndedEvent) {
	m.trackEnded = append(m.trackEnded, event)
}

func (m *mockEventPublisher) PublishTrackFailed(event domain.TrackFailedEvent) {
	m.trackFailed = append(m.trackFailed, event)
}
