package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/samber/lo"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// voiceConnectionTimeout is the maximum time to wait for voice connection to be established.
const voiceConnectionTimeout = 10 * time.Second

// ErrNoLavalinkNode is returned when no Lavalink node is available.
var ErrNoLavalinkNode = errors.New("no available Lavalink node")

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	NodeName string
	Address  string
	Password string
	Secure   bool
}

// LavalinkAdapter wraps DisGoLink to implement the audio, voice and resolver ports.
type LavalinkAdapter struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID

	handshakeMu sync.Mutex
	handshakes  map[snowflake.ID]*voiceHandshake

	playbackMu sync.Mutex
	playbacks  map[snowflake.ID]uint64 // playback sequence of the last Play per guild

	publisherMu sync.RWMutex
	publisher   ports.EventPublisher
}

// NewLavalinkAdapter creates a new LavalinkAdapter and connects to the node.
// The session must already be open.
func NewLavalinkAdapter(
	ctx context.Context,
	session *discordgo.Session,
	config LavalinkConfig,
) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	adapter := &LavalinkAdapter{
		session:    session,
		botID:      botID,
		handshakes: make(map[snowflake.ID]*voiceHandshake),
		playbacks:  make(map[snowflake.ID]uint64),
	}

	adapter.link = disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
	)

	node, err := adapter.link.AddNode(ctx, disgolink.NodeConfig{
		Name:     config.NodeName,
		Address:  config.Address,
		Password: config.Password,
		Secure:   config.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return adapter, nil
}

// SetEventPublisher sets where stream-end events are published.
func (c *LavalinkAdapter) SetEventPublisher(publisher ports.EventPublisher) {
	c.publisherMu.Lock()
	defer c.publisherMu.Unlock()
	c.publisher = publisher
}

// Close disconnects from all Lavalink nodes.
func (c *LavalinkAdapter) Close() {
	c.link.Close()
}

// JoinChannel connects to a voice channel.
// It waits for both VoiceStateUpdate and VoiceServerUpdate events before returning.
func (c *LavalinkAdapter) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	handshake := c.handshake(guildID)
	ready := handshake.expectJoin()
	defer handshake.cancelJoin(ready)

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, false)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-time.After(voiceConnectionTimeout):
		return errors.New("timeout waiting for voice connection")
	}
}

// LeaveChannel destroys the guild's player and disconnects from voice.
func (c *LavalinkAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	c.clearPlayback(guildID)

	if player := c.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}

	err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Play starts streaming track from position, replacing the current stream.
func (c *LavalinkAdapter) Play(
	ctx context.Context,
	guildID snowflake.ID,
	track domain.Track,
	position time.Duration,
	playbackSeq uint64,
) error {
	player := c.link.Player(guildID)

	// Ends that arrive from here on belong to this playback.
	c.setPlayback(guildID, playbackSeq)

	opts := []lavalink.PlayerUpdateOpt{
		// Use WithEncodedTrack to avoid userData:null issue
		lavalink.WithEncodedTrack(track.Encoded),
		lavalink.WithPaused(false),
	}
	if position > 0 {
		opts = append(opts, lavalink.WithPosition(toLavalinkDuration(position)))
	}

	if err := player.Update(ctx, opts...); err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}

	return nil
}

// Seek moves the current stream to position.
func (c *LavalinkAdapter) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithPosition(toLavalinkDuration(position))); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return nil
}

// Stop stops the current playback.
func (c *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.ExistingPlayer(guildID)
	if player == nil {
		return nil
	}

	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}

	return nil
}

// Pause pauses the current playback.
func (c *LavalinkAdapter) Pause(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithPaused(true)); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}

	return nil
}

// Resume resumes the current playback.
func (c *LavalinkAdapter) Resume(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithPaused(false)); err != nil {
		return fmt.Errorf("failed to resume playback: %w", err)
	}

	return nil
}

// LoadTracks resolves a query on the best available node.
func (c *LavalinkAdapter) LoadTracks(
	ctx context.Context,
	query string,
) (*ports.LoadResult, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, ErrNoLavalinkNode
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	return convertLoadResult(result), nil
}

// convertLoadResult converts a Lavalink result to a ports result.
func convertLoadResult(result *lavalink.LoadResult) *ports.LoadResult {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return &ports.LoadResult{
			Type:   ports.LoadTypeTrack,
			Tracks: []*ports.TrackInfo{convertTrack(data)},
		}

	case lavalink.Playlist:
		return &ports.LoadResult{
			Type:         ports.LoadTypePlaylist,
			Tracks:       convertTracks(data.Tracks),
			PlaylistName: data.Info.Name,
		}

	case lavalink.Search:
		return &ports.LoadResult{
			Type:   ports.LoadTypeSearch,
			Tracks: convertTracks(data),
		}

	case lavalink.Exception:
		return &ports.LoadResult{
			Type:  ports.LoadTypeError,
			Error: data.Message,
		}

	default:
		return &ports.LoadResult{
			Type: ports.LoadTypeEmpty,
		}
	}
}

func convertTracks(tracks []lavalink.Track) []*ports.TrackInfo {
	return lo.Map(tracks, func(t lavalink.Track, _ int) *ports.TrackInfo {
		return convertTrack(t)
	})
}

// convertTrack converts a Lavalink track to TrackInfo.
// Lavalink does not report chapters, so Chapters is left empty.
func convertTrack(track lavalink.Track) *ports.TrackInfo {
	info := track.Info

	return &ports.TrackInfo{
		Identifier: info.Identifier,
		Encoded:    track.Encoded,
		Title:      info.Title,
		Artist:     info.Author,
		Duration:   time.Duration(info.Length) * time.Millisecond,
		URI:        lo.FromPtr(info.URI),
		ArtworkURL: lo.FromPtr(info.ArtworkURL),
		SourceName: info.SourceName,
		IsStream:   info.IsStream,
	}
}

func toLavalinkDuration(d time.Duration) lavalink.Duration {
	return lavalink.Duration(d.Milliseconds())
}

// OnVoiceServerUpdate handles Discord voice server updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	if creds, ok := c.handshake(guildID).updateServer(event.Token, event.Endpoint); ok {
		c.forwardVoiceCredentials(guildID, creds)
	}
}

// OnVoiceStateUpdate handles Discord voice state updates of the bot itself.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// An empty channel means the bot disconnected; no server update follows.
	if event.ChannelID == "" {
		c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		c.handshakeMu.Lock()
		delete(c.handshakes, guildID)
		c.handshakeMu.Unlock()
		return
	}

	channelID, err := snowflake.Parse(event.ChannelID)
	if err != nil {
		slog.Error("failed to parse channel ID in voice state update", "error", err)
		return
	}

	if creds, ok := c.handshake(guildID).updateState(&channelID, event.SessionID); ok {
		c.forwardVoiceCredentials(guildID, creds)
	}
}

func (c *LavalinkAdapter) handshake(guildID snowflake.ID) *voiceHandshake {
	c.handshakeMu.Lock()
	defer c.handshakeMu.Unlock()

	h, ok := c.handshakes[guildID]
	if !ok {
		h = &voiceHandshake{}
		c.handshakes[guildID] = h
	}
	return h
}

func (c *LavalinkAdapter) forwardVoiceCredentials(guildID snowflake.ID, creds voiceCredentials) {
	slog.Debug("forwarding voice credentials to Lavalink",
		"guild", guildID,
		"channel", creds.channelID,
		"hasSessionID", creds.sessionID != "",
	)

	// Lavalink expects the state before the server.
	c.link.OnVoiceStateUpdate(context.Background(), guildID, creds.channelID, creds.sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), guildID, creds.token, creds.endpoint)
}

func (c *LavalinkAdapter) setPlayback(guildID snowflake.ID, playbackSeq uint64) {
	c.playbackMu.Lock()
	defer c.playbackMu.Unlock()

	if c.playbacks == nil {
		c.playbacks = make(map[snowflake.ID]uint64)
	}
	c.playbacks[guildID] = playbackSeq
}

func (c *LavalinkAdapter) clearPlayback(guildID snowflake.ID) {
	c.playbackMu.Lock()
	defer c.playbackMu.Unlock()
	delete(c.playbacks, guildID)
}

func (c *LavalinkAdapter) currentPlayback(guildID snowflake.ID) uint64 {
	c.playbackMu.Lock()
	defer c.playbackMu.Unlock()
	return c.playbacks[guildID]
}

// publishTrackEnded stamps the event with the guild's current playback.
func (c *LavalinkAdapter) publishTrackEnded(event domain.TrackEndedEvent) {
	event.PlaybackSeq = c.currentPlayback(event.GuildID)

	c.publisherMu.RLock()
	publisher := c.publisher
	c.publisherMu.RUnlock()

	if publisher != nil {
		publisher.PublishTrackEnded(event)
	}
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	c.publishTrackEnded(domain.TrackEndedEvent{
		GuildID: player.GuildID(),
		TrackID: domain.TrackID(event.Track.Info.Identifier),
		Reason:  convertEndReason(event.Reason),
	})
}

func (c *LavalinkAdapter) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	// Lavalink follows an exception with a load-failed end event.
	slog.Warn("track exception",
		"guild", player.GuildID(),
		"track", event.Track.Info.Identifier,
		"error", event.Exception.Message,
	)
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)

	c.publishTrackEnded(domain.TrackEndedEvent{
		GuildID: player.GuildID(),
		TrackID: domain.TrackID(event.Track.Info.Identifier),
		Reason:  domain.TrackEndLoadFailed,
	})
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}

// Ensure LavalinkAdapter implements port interfaces.
var (
	_ ports.AudioPlayer     = (*LavalinkAdapter)(nil)
	_ ports.VoiceConnection = (*LavalinkAdapter)(nil)
	_ ports.TrackResolver   = (*LavalinkAdapter)(nil)
)
