package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/samber/lo"
	"github.com/sglre6355/rythm/internal/bot"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/usecases"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
	colorInfo    = 0x5865F2
)

// commandTimeout bounds a single command, including track resolution.
const commandTimeout = 30 * time.Second

// Options tunes the interactive commands.
type Options struct {
	SearchResults    int
	SearchTimeout    time.Duration
	QueuePageTimeout time.Duration
}

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel        *usecases.VoiceChannelService
	playback            *usecases.PlaybackService
	queue               *usecases.QueueService
	trackLoader         *usecases.TrackLoaderService
	notificationChannel *usecases.NotificationChannelService
	throttle            *SearchThrottle

	searchResults int
	searches      *sessionStore[searchSession]
	queuePages    *sessionStore[queuePage]
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
	trackLoader *usecases.TrackLoaderService,
	notificationChannel *usecases.NotificationChannelService,
	throttle *SearchThrottle,
	opts Options,
) *CommandHandlers {
	return &CommandHandlers{
		voiceChannel:        voiceChannel,
		playback:            playback,
		queue:               queue,
		trackLoader:         trackLoader,
		notificationChannel: notificationChannel,
		throttle:            throttle,
		searchResults:       opts.SearchResults,
		searches:            newSessionStore[searchSession](opts.SearchTimeout),
		queuePages:          newSessionStore[queuePage](opts.QueuePageTimeout),
	}
}

// Close expires every open search menu and queue page without editing them.
func (h *CommandHandlers) Close() {
	h.searches.closeAll()
	h.queuePages.closeAll()
}

// invocation identifies who ran a command and where.
type invocation struct {
	guildID   snowflake.ID
	userID    snowflake.ID
	channelID snowflake.ID
}

func parseInvocation(i *discordgo.InteractionCreate) (invocation, bool) {
	if i.Member == nil || i.Member.User == nil {
		return invocation{}, false
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return invocation{}, false
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return invocation{}, false
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return invocation{}, false
	}

	return invocation{guildID: guildID, userID: userID, channelID: channelID}, true
}

func commandOptions(
	i *discordgo.InteractionCreate,
) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	return lo.KeyBy(
		i.ApplicationCommandData().Options,
		func(opt *discordgo.ApplicationCommandInteractionDataOption) string { return opt.Name },
	)
}

// followChannel points the guild's notifications at the channel of the
// latest command. Guilds without a player are ignored.
func (h *CommandHandlers) followChannel(ctx context.Context, inv invocation) {
	_ = h.notificationChannel.Set(ctx, usecases.SetNotificationChannelInput{
		GuildID:   inv.guildID,
		ChannelID: inv.channelID,
	})
}

// HandleJoin handles the /join command.
func (h *CommandHandlers) HandleJoin(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	var voiceChannelID snowflake.ID
	if opt, ok := commandOptions(i)["channel"]; ok {
		id, err := snowflake.Parse(opt.ChannelValue(nil).ID)
		if err != nil {
			return respondError(r, "Invalid voice channel.")
		}
		voiceChannelID = id
	}

	output, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               inv.guildID,
		UserID:                inv.userID,
		NotificationChannelID: inv.channelID,
		VoiceChannelID:        voiceChannelID,
	})
	if err != nil {
		return fail(r, err)
	}

	if output.AlreadyConnected {
		return respondSuccess(r, fmt.Sprintf("Already connected to <#%d>.", output.VoiceChannelID))
	}
	return respondSuccess(r, fmt.Sprintf("Connected to <#%d>.", output.VoiceChannelID))
}

// HandleLeave handles the /leave command.
func (h *CommandHandlers) HandleLeave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	if err := h.voiceChannel.Leave(ctx, usecases.LeaveInput{GuildID: inv.guildID}); err != nil {
		return fail(r, err)
	}

	return respondSuccess(r, "Disconnected.")
}

// HandlePlay handles the /play command. It joins the invoker's channel when
// the bot is not connected yet.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	var query string
	if opt, ok := commandOptions(i)["query"]; ok {
		query = strings.TrimSpace(opt.StringValue())
	}
	if query == "" {
		return respondError(r, "Please provide a URL or search term.")
	}

	// Joining and resolving can outlast the interaction deadline
	if err := r.Defer(false); err != nil {
		return err
	}

	// 1. Join voice channel (or update notification channel if already connected)
	if _, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               inv.guildID,
		UserID:                inv.userID,
		NotificationChannelID: inv.channelID,
		KeepCurrentChannel:    true,
	}); err != nil {
		return fail(r, err)
	}

	// 2. Resolve outside the guild executor
	loaded, err := h.trackLoader.LoadTracks(ctx, usecases.LoadTracksInput{Query: query})
	if err != nil {
		return fail(r, err)
	}

	// 3. Add to queue; the state is re-read, so a concurrent /leave wins
	added, err := h.queue.Add(ctx, usecases.QueueAddInput{
		GuildID:     inv.guildID,
		Tracks:      loaded.List.Tracks,
		RequesterID: inv.userID,
	})
	if err != nil {
		return fail(r, err)
	}

	if loaded.List.IsPlaylist() {
		return respondEmbed(r, playlistAddedEmbed(loaded.List.Name, added))
	}
	return respondEmbed(r, trackAddedEmbed(loaded.List.Tracks[0], added.Started, added.Position, added.ETA))
}

// HandleInsert handles the /insert command.
func (h *CommandHandlers) HandleInsert(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	options := commandOptions(i)

	var query string
	if opt, ok := options["query"]; ok {
		query = strings.TrimSpace(opt.StringValue())
	}
	if query == "" {
		return respondError(r, "Please provide a URL or search term.")
	}

	position := 1
	if opt, ok := options["position"]; ok {
		position = int(opt.IntValue())
	}

	if err := r.Defer(false); err != nil {
		return err
	}

	h.followChannel(ctx, inv)

	loaded, err := h.trackLoader.LoadTracks(ctx, usecases.LoadTracksInput{Query: query})
	if err != nil {
		return fail(r, err)
	}
	track := loaded.List.Tracks[0]

	inserted, err := h.queue.Insert(ctx, usecases.QueueInsertInput{
		GuildID:     inv.guildID,
		Track:       track,
		RequesterID: inv.userID,
		Position:    position,
	})
	if err != nil {
		return fail(r, err)
	}

	return respondEmbed(r, trackAddedEmbed(track, inserted.Started, inserted.Position, inserted.ETA))
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	h.followChannel(ctx, inv)

	output, err := h.playback.Skip(ctx, usecases.SkipInput{GuildID: inv.guildID})
	if err != nil {
		return fail(r, err)
	}

	description := fmt.Sprintf("Skipped %s.", trackLink(output.Skipped.Track))
	if output.Next != nil {
		description += fmt.Sprintf("\nNow playing %s.", trackLink(output.Next.Track))
	} else {
		description += "\nThe queue is now empty."
	}

	// "Now Playing" is posted separately via PlaybackStartedEvent
	return respondSuccess(r, description)
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	h.followChannel(ctx, inv)

	if err := h.playback.Stop(ctx, usecases.StopInput{GuildID: inv.guildID}); err != nil {
		return fail(r, err)
	}

	return respondSuccess(r, "Stopped playback and cleared the queue.")
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	h.followChannel(ctx, inv)

	if err := h.playback.Pause(ctx, usecases.PauseInput{GuildID: inv.guildID}); err != nil {
		return fail(r, err)
	}

	return respondSuccess(r, "Paused playback.")
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	h.followChannel(ctx, inv)

	if err := h.playback.Resume(ctx, usecases.ResumeInput{GuildID: inv.guildID}); err != nil {
		return fail(r, err)
	}

	return respondSuccess(r, "Resumed playback.")
}

// HandleSeek handles the /seek command. The position is either a timestamp
// or the title of a chapter of the current track.
func (h *CommandHandlers) HandleSeek(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	var raw string
	if opt, ok := commandOptions(i)["position"]; ok {
		raw = strings.TrimSpace(opt.StringValue())
	}
	if raw == "" {
		return respondError(r, "Please provide a position such as `1:30` or a chapter title.")
	}

	input := usecases.SeekInput{GuildID: inv.guildID}
	if position, ok := parseSeekPosition(raw); ok {
		input.Position = position
	} else {
		input.Chapter = raw
	}

	h.followChannel(ctx, inv)

	output, err := h.playback.Seek(ctx, input)
	if err != nil {
		return fail(r, err)
	}

	description := fmt.Sprintf("Seeked to `%s`.", usecases.FormatDuration(output.Position))
	if output.Chapter != nil {
		description = fmt.Sprintf(
			"Seeked to `%s` (chapter **%s**).",
			usecases.FormatDuration(output.Position),
			output.Chapter.Title,
		)
	}

	return respondSuccess(r, description)
}

// HandleLoop handles the /loop command.
func (h *CommandHandlers) HandleLoop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	h.followChannel(ctx, inv)

	output, err := h.playback.ToggleLoopTrack(ctx, usecases.ToggleLoopInput{GuildID: inv.guildID})
	if err != nil {
		return fail(r, err)
	}

	if output.Enabled {
		return respondSuccess(r, "Now looping the current track.")
	}
	return respondSuccess(r, "Stopped looping the current track.")
}

// HandleLoopQueue handles the /loop-queue command.
func (h *CommandHandlers) HandleLoopQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	h.followChannel(ctx, inv)

	output, err := h.playback.ToggleLoopQueue(ctx, usecases.ToggleLoopInput{GuildID: inv.guildID})
	if err != nil {
		return fail(r, err)
	}

	if output.Enabled {
		return respondSuccess(r, "Now looping the queue.")
	}
	return respondSuccess(r, "Stopped looping the queue.")
}

// HandleNowPlaying handles the /now-playing command.
func (h *CommandHandlers) HandleNowPlaying(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	h.followChannel(ctx, inv)

	output, err := h.playback.NowPlaying(ctx, usecases.NowPlayingInput{GuildID: inv.guildID})
	if err != nil {
		return fail(r, err)
	}

	return respondEmbed(r, nowPlayingEmbed(output))
}

// HandleRemove handles the /remove command.
func (h *CommandHandlers) HandleRemove(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	var position int
	if opt, ok := commandOptions(i)["position"]; ok {
		position = int(opt.IntValue())
	}

	h.followChannel(ctx, inv)

	output, err := h.queue.Remove(ctx, usecases.QueueRemoveInput{
		GuildID:  inv.guildID,
		Position: position,
	})
	if err != nil {
		return fail(r, err)
	}

	return respondSuccess(r, fmt.Sprintf("Removed %s.", trackLink(output.Removed.Track)))
}

// HandleClearQueue handles the /clear-queue command. The current track keeps playing.
func (h *CommandHandlers) HandleClearQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	h.followChannel(ctx, inv)

	output, err := h.queue.Clear(ctx, usecases.QueueClearInput{GuildID: inv.guildID})
	if err != nil {
		return fail(r, err)
	}

	return respondSuccess(r, fmt.Sprintf(
		"Cleared %s from the queue.",
		pluralize(output.ClearedCount, "track", "tracks"),
	))
}

// HandleShuffle handles the /shuffle command.
func (h *CommandHandlers) HandleShuffle(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This command can only be used in a server.")
	}

	h.followChannel(ctx, inv)

	output, err := h.queue.Shuffle(ctx, usecases.QueueShuffleInput{GuildID: inv.guildID})
	if err != nil {
		return fail(r, err)
	}

	return respondSuccess(r, fmt.Sprintf("Shuffled %s.", pluralize(output.Count, "track", "tracks")))
}

// Error handling.

// userErrors are shown to the invoker verbatim. Anything else goes back to
// the bot router, which logs it and answers with a generic message.
var userErrors = []error{
	usecases.ErrNotConnected,
	usecases.ErrUserNotInVoice,
	usecases.ErrNoResults,
	usecases.ErrLoadFailed,
	usecases.ErrTransport,
	usecases.ErrChapterNotFound,
	usecases.ErrNothingPlaying,
	usecases.ErrEmptyQueue,
	usecases.ErrAlreadyEmpty,
	usecases.ErrInvalidPosition,
	usecases.ErrOutOfRange,
	usecases.ErrNotSeekable,
	usecases.ErrAlreadyPaused,
	usecases.ErrNotPaused,
}

func userMessage(err error) (string, bool) {
	known := lo.ContainsBy(userErrors, func(target error) bool {
		return errors.Is(err, target)
	})
	if !known {
		return "", false
	}
	return sentence(err.Error()), true
}

// sentence capitalizes s and terminates it with a period.
func sentence(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	s = string(unicode.ToUpper(first)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

func fail(r bot.Responder, err error) error {
	if message, ok := userMessage(err); ok {
		return respondError(r, message)
	}
	return err
}

// Response helpers.

func respondEmbed(r bot.Responder, embed *discordgo.MessageEmbed) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func respondSuccess(r bot.Responder, description string) error {
	return respondEmbed(r, &discordgo.MessageEmbed{
		Description: description,
		Color:       colorSuccess,
	})
}

func respondError(r bot.Responder, message string) error {
	return respondEmbed(r, &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	})
}
