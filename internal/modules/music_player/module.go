package music_player

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/bot"
	"github.com/sglre6355/rythm/internal/modules/music_player/application"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/rythm/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/rythm/internal/modules/music_player/presentation/discord"
)

// lavalinkConnectTimeout bounds the initial connection to the Lavalink node.
const lavalinkConnectTimeout = 30 * time.Second

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var (
	_ bot.ConfigurableModule = (*MusicPlayerModule)(nil)
	_ bot.ComponentModule    = (*MusicPlayerModule)(nil)
	_ bot.AutocompleteModule = (*MusicPlayerModule)(nil)
)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	autocomplete    *discord.AutocompleteHandler
	eventHandlers   *discord.EventHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter

	eventBus *infrastructure.ChannelEventBus
	mailbox  *infrastructure.GuildMailbox
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":        m.commandHandlers.HandleJoin,
		"leave":       m.commandHandlers.HandleLeave,
		"play":        m.commandHandlers.HandlePlay,
		"insert":      m.commandHandlers.HandleInsert,
		"search":      m.commandHandlers.HandleSearch,
		"skip":        m.commandHandlers.HandleSkip,
		"stop":        m.commandHandlers.HandleStop,
		"pause":       m.commandHandlers.HandlePause,
		"resume":      m.commandHandlers.HandleResume,
		"seek":        m.commandHandlers.HandleSeek,
		"loop":        m.commandHandlers.HandleLoop,
		"loop-queue":  m.commandHandlers.HandleLoopQueue,
		"queue":       m.commandHandlers.HandleQueue,
		"now-playing": m.commandHandlers.HandleNowPlaying,
		"remove":      m.commandHandlers.HandleRemove,
		"clear-queue": m.commandHandlers.HandleClearQueue,
		"shuffle":     m.commandHandlers.HandleShuffle,
	}
}

// ComponentHandlers returns the handlers for search menus and queue pages.
func (m *MusicPlayerModule) ComponentHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		discord.ComponentSearchSelect: m.commandHandlers.HandleSearchSelect,
		discord.ComponentSearchCancel: m.commandHandlers.HandleSearchCancel,
		discord.ComponentQueuePrev:    m.commandHandlers.HandleQueuePrev,
		discord.ComponentQueueNext:    m.commandHandlers.HandleQueueNext,
	}
}

// AutocompleteHandlers returns the autocomplete handlers keyed by command.
func (m *MusicPlayerModule) AutocompleteHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":   m.autocomplete.HandleQuery,
		"insert": m.autocomplete.HandleQuery,
		"remove": m.autocomplete.HandleRemovePosition,
		"seek":   m.autocomplete.HandleSeekPosition,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		m.handleVoiceServerUpdate,
		m.handleVoiceStateUpdate,
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init wires the module against the open Discord session.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil || deps.Session.State == nil || deps.Session.State.User == nil {
		return errors.New("music_player requires an open Discord session")
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), lavalinkConnectTimeout)
	defer cancel()

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(ctx, deps.Session, infrastructure.LavalinkConfig{
		NodeName: m.config.Lavalink.NodeName,
		Address:  m.config.Lavalink.Address,
		Password: m.config.Lavalink.Password,
		Secure:   m.config.Lavalink.Secure,
	})
	if err != nil {
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)
	m.mailbox = infrastructure.NewGuildMailbox()
	lavalinkAdapter.SetEventPublisher(m.eventBus)

	repo := infrastructure.NewMemoryRepository()
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	userInfo := infrastructure.NewDiscordUserInfoProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session)

	maxFailures := m.config.Music.MaxTrackFailures

	voiceChannel := usecases.NewVoiceChannelService(repo, m.mailbox, lavalinkAdapter, voiceState, m.eventBus)
	playback := usecases.NewPlaybackService(repo, m.mailbox, lavalinkAdapter, m.eventBus, maxFailures)
	queue := usecases.NewQueueService(repo, m.mailbox, lavalinkAdapter, m.eventBus, maxFailures)
	trackLoader := usecases.NewTrackLoaderService(lavalinkAdapter)
	notificationChannel := usecases.NewNotificationChannelService(repo, m.mailbox)
	autocomplete := usecases.NewAutocompleteService(repo, m.mailbox, lavalinkAdapter)

	application.NewPlaybackEventHandler(playback, m.eventBus).Start()
	application.NewNotificationEventHandler(notificationChannel, m.eventBus, notifier, userInfo).Start()

	throttle := discord.NewSearchThrottle(m.config.Music.SearchRate, m.config.Music.SearchBurst)
	m.commandHandlers = discord.NewCommandHandlers(
		voiceChannel,
		playback,
		queue,
		trackLoader,
		notificationChannel,
		throttle,
		discord.Options{
			SearchResults:    m.config.Music.SearchResults,
			SearchTimeout:    m.config.Music.SearchTimeout,
			QueuePageTimeout: m.config.Music.QueuePageTimeout,
		},
	)
	m.autocomplete = discord.NewAutocompleteHandler(autocomplete, playback, throttle)
	m.eventHandlers = discord.NewEventHandlers(botID, voiceChannel)

	slog.Info(
		"music_player module initialized",
		"lavalink_node", m.config.Lavalink.NodeName,
		"max_track_failures", maxFailures,
	)

	return nil
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	if m.commandHandlers != nil {
		m.commandHandlers.Close()
	}

	// Stop accepting events before the workers that publish them go away
	if m.eventBus != nil {
		m.eventBus.Close()
	}
	if m.mailbox != nil {
		m.mailbox.Close()
	}
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	return nil
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}
