package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/bot"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/usecases"
)

// Component custom ID prefixes. The bot routes on the part before ':'.
const (
	ComponentSearchSelect = "search"
	ComponentSearchCancel = "search-cancel"
	ComponentQueuePrev    = "queue-prev"
	ComponentQueueNext    = "queue-next"
)

type searchSession struct {
	guildID snowflake.ID
	tracks  []usecases.Track
}

type queuePage struct {
	guildID snowflake.ID
	page    int
}

func componentID(prefix, sessionID string) string {
	return prefix + ":" + sessionID
}

func sessionID(customID string) string {
	_, id, _ := strings.Cut(customID, ":")
	return id
}

// expireMessage strips the components from the original response once its
// session is gone, optionally replacing the embed with a notice.
func expireMessage(s *discordgo.Session, interaction *discordgo.Interaction, notice string) func() {
	return func() {
		components := []discordgo.MessageComponent{}
		edit := &discordgo.WebhookEdit{Components: &components}
		if notice != "" {
			embeds := []*discordgo.MessageEmbed{{Description: notice, Color: colorInfo}}
			edit.Embeds = &embeds
		}

		if _, err := s.InteractionResponseEdit(interaction, edit); err != nil {
			slog.Debug("failed to expire interactive message", "error", err)
		}
	}
}

// HandleSearch handles the /search command: it lists the results in a select
// menu that only the invoker may use.
func (h *CommandHandlers) HandleSearch(
	s *discordgo.Session,
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
		return respondError(r, "Please provide a search term.")
	}

	limit := h.searchResults
	if opt, ok := options["results"]; ok {
		limit = int(opt.IntValue())
	}

	if !h.throttle.Allow(inv.userID) {
		return respondError(r, "You are searching too quickly. Try again in a moment.")
	}

	if err := r.Defer(false); err != nil {
		return err
	}

	h.followChannel(ctx, inv)

	output, err := h.trackLoader.SearchTracks(ctx, usecases.SearchTracksInput{
		Query: query,
		Limit: limit,
	})
	if err != nil {
		return fail(r, err)
	}

	var onExpire func()
	if s != nil {
		onExpire = expireMessage(s, i.Interaction, "Search timed out.")
	}
	id := h.searches.open(inv.userID, searchSession{
		guildID: inv.guildID,
		tracks:  output.Tracks,
	}, onExpire)

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{searchEmbed(query, output.Tracks)},
			Components: searchComponents(id, output.Tracks),
		},
	})
}

func searchComponents(id string, tracks []usecases.Track) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, len(tracks))
	for idx, track := range tracks {
		options[idx] = discordgo.SelectMenuOption{
			Label:       truncate(fmt.Sprintf("%d. %s", idx+1, track.Title), 100),
			Description: truncate(fmt.Sprintf("%s (%s)", track.Artist, track.FormattedDuration()), 100),
			Value:       strconv.Itoa(idx),
		}
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    componentID(ComponentSearchSelect, id),
				Placeholder: "Choose a track",
				Options:     options,
			},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Cancel",
				Style:    discordgo.DangerButton,
				CustomID: componentID(ComponentSearchCancel, id),
			},
		}},
	}
}

// HandleSearchSelect enqueues the chosen search result.
func (h *CommandHandlers) HandleSearchSelect(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This interaction can only be used in a server.")
	}

	data := i.MessageComponentData()
	id := sessionID(data.CustomID)

	ownerID, search, ok := h.searches.get(id)
	if !ok {
		return respondEphemeral(r, "This search has expired.")
	}
	if ownerID != inv.userID {
		return respondEphemeral(r, "Only the user who ran this search can choose a track.")
	}

	if len(data.Values) != 1 {
		return respondEphemeral(r, "Please choose exactly one track.")
	}
	idx, err := strconv.Atoi(data.Values[0])
	if err != nil || idx < 0 || idx >= len(search.tracks) {
		return respondEphemeral(r, "That choice is not available.")
	}
	track := search.tracks[idx]

	// Lost a race with the expiry timer
	if !h.searches.close(id) {
		return respondEphemeral(r, "This search has expired.")
	}

	if err := r.Defer(false); err != nil {
		return err
	}

	if _, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               search.guildID,
		UserID:                inv.userID,
		NotificationChannelID: inv.channelID,
		KeepCurrentChannel:    true,
	}); err != nil {
		return fail(r, err)
	}

	added, err := h.queue.Add(ctx, usecases.QueueAddInput{
		GuildID:     search.guildID,
		Tracks:      []usecases.Track{track},
		RequesterID: inv.userID,
	})
	if err != nil {
		return fail(r, err)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{trackAddedEmbed(track, added.Started, added.Position, added.ETA)},
			Components: []discordgo.MessageComponent{},
		},
	})
}

// HandleSearchCancel closes the invoker's search menu.
func (h *CommandHandlers) HandleSearchCancel(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This interaction can only be used in a server.")
	}

	id := sessionID(i.MessageComponentData().CustomID)
	ownerID, _, ok := h.searches.get(id)
	if !ok {
		return respondEphemeral(r, "This search has expired.")
	}
	if ownerID != inv.userID {
		return respondEphemeral(r, "Only the user who ran this search can cancel it.")
	}

	h.searches.close(id)

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{{Description: "Search cancelled.", Color: colorInfo}},
			Components: []discordgo.MessageComponent{},
		},
	})
}

// HandleQueue handles the /queue command. Multi-page queues get prev/next
// buttons bound to the invoker.
func (h *CommandHandlers) HandleQueue(
	s *discordgo.Session,
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

	output, err := h.queue.List(ctx, usecases.QueueListInput{
		GuildID: inv.guildID,
		Page:    1,
	})
	if err != nil {
		return fail(r, err)
	}

	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{queueEmbed(output)},
	}

	if output.TotalPages > 1 {
		var onExpire func()
		if s != nil {
			onExpire = expireMessage(s, i.Interaction, "")
		}
		id := h.queuePages.open(inv.userID, queuePage{
			guildID: inv.guildID,
			page:    output.CurrentPage,
		}, onExpire)
		data.Components = queueComponents(id, output.CurrentPage, output.TotalPages)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func queueComponents(id string, page, totalPages int) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Previous",
				Style:    discordgo.SecondaryButton,
				CustomID: componentID(ComponentQueuePrev, id),
				Disabled: page <= 1,
			},
			discordgo.Button{
				Label:    "Next",
				Style:    discordgo.SecondaryButton,
				CustomID: componentID(ComponentQueueNext, id),
				Disabled: page >= totalPages,
			},
		}},
	}
}

// HandleQueuePrev shows the previous queue page.
func (h *CommandHandlers) HandleQueuePrev(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.turnQueuePage(i, r, -1)
}

// HandleQueueNext shows the next queue page.
func (h *CommandHandlers) HandleQueueNext(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.turnQueuePage(i, r, 1)
}

func (h *CommandHandlers) turnQueuePage(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	delta int,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondError(r, "This interaction can only be used in a server.")
	}

	id := sessionID(i.MessageComponentData().CustomID)
	ownerID, current, ok := h.queuePages.get(id)
	if !ok {
		return respondEphemeral(r, "This queue view has expired. Run /queue again.")
	}
	if ownerID != inv.userID {
		return respondEphemeral(r, "Only the user who ran /queue can turn its pages.")
	}

	output, err := h.queue.List(ctx, usecases.QueueListInput{
		GuildID: current.guildID,
		Page:    max(current.page+delta, 1),
	})
	if err != nil {
		h.queuePages.close(id)
		if message, ok := userMessage(err); ok {
			return r.Respond(&discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseUpdateMessage,
				Data: &discordgo.InteractionResponseData{
					Embeds:     []*discordgo.MessageEmbed{{Title: "Error", Description: message, Color: colorError}},
					Components: []discordgo.MessageComponent{},
				},
			})
		}
		return err
	}

	current.page = output.CurrentPage
	h.queuePages.update(id, current)

	var components []discordgo.MessageComponent
	if output.TotalPages > 1 {
		components = queueComponents(id, output.CurrentPage, output.TotalPages)
	} else {
		h.queuePages.close(id)
		components = []discordgo.MessageComponent{}
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{queueEmbed(output)},
			Components: components,
		},
	})
}

func respondEphemeral(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
