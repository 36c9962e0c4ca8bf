package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
	"github.com/sglre6355/rythm/internal/bot"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/usecases"
)

const (
	maxChoices          = 25
	maxChoiceLength     = 100
	minAutocompleteRune = 2
	autocompleteTimeout = 2500 * time.Millisecond
)

// AutocompleteHandler handles autocomplete requests.
type AutocompleteHandler struct {
	autocomplete *usecases.AutocompleteService
	playback     *usecases.PlaybackService
	throttle     *SearchThrottle
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
func NewAutocompleteHandler(
	autocomplete *usecases.AutocompleteService,
	playback *usecases.PlaybackService,
	throttle *SearchThrottle,
) *AutocompleteHandler {
	return &AutocompleteHandler{
		autocomplete: autocomplete,
		playback:     playback,
		throttle:     throttle,
	}
}

// HandleQuery suggests tracks for the query option of /play and /insert.
func (h *AutocompleteHandler) HandleQuery(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	// Discord drops autocomplete answers after three seconds
	ctx, cancel := context.WithTimeout(context.Background(), autocompleteTimeout)
	defer cancel()

	opt := focusedOption(i)
	if opt == nil || opt.Name != "query" {
		return respondChoices(r, nil)
	}

	query := strings.TrimSpace(opt.StringValue())
	if len([]rune(query)) < minAutocompleteRune {
		return respondChoices(r, nil)
	}

	inv, ok := parseInvocation(i)
	if !ok || !h.throttle.Allow(inv.userID) {
		return respondChoices(r, nil)
	}

	output, err := h.autocomplete.LoadTracksForAutocomplete(ctx, usecases.LoadTracksForAutocompleteInput{
		Query: query,
		Limit: maxChoices - 1,
	})
	if err != nil {
		_ = respondChoices(r, nil)
		return err
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)
	if output.IsPlaylist && len(output.PlaylistURL) <= maxChoiceLength {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name: truncate(
				fmt.Sprintf("📋 %s (%d tracks)", output.PlaylistName, output.TrackCount),
				maxChoiceLength,
			),
			Value: output.PlaylistURL,
		})
	}

	// Choice values are capped at 100 characters, so long URIs cannot be offered
	playable := lo.Filter(output.Tracks, func(track usecases.Track, _ int) bool {
		return track.URI != "" && len(track.URI) <= maxChoiceLength
	})
	choices = append(choices, lo.Map(playable, func(track usecases.Track, idx int) *discordgo.ApplicationCommandOptionChoice {
		name := fmt.Sprintf("🎵 %s - %s", track.Title, track.Artist)
		if output.IsPlaylist {
			name = fmt.Sprintf("🎵 %d. %s - %s", idx+1, track.Title, track.Artist)
		}
		return &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(name, maxChoiceLength),
			Value: track.URI,
		}
	})...)

	return respondChoices(r, lo.Slice(choices, 0, maxChoices))
}

// HandleRemovePosition suggests pending queue positions for /remove.
func (h *AutocompleteHandler) HandleRemovePosition(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), autocompleteTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondChoices(r, nil)
	}

	var typed string
	if opt := focusedOption(i); opt != nil {
		typed = strings.TrimSpace(fmt.Sprint(opt.Value))
	}

	output := h.autocomplete.GetQueueEntries(ctx, usecases.GetQueueEntriesInput{GuildID: inv.guildID})

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)
	for idx, entry := range output.Entries {
		position := idx + 1
		if typed != "" && !strings.HasPrefix(strconv.Itoa(position), typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(fmt.Sprintf("%d. %s - %s", position, entry.Track.Title, entry.Track.Artist), maxChoiceLength),
			Value: position,
		})
		if len(choices) == maxChoices {
			break
		}
	}

	return respondChoices(r, choices)
}

// HandleSeekPosition suggests the chapters of the current track for /seek.
func (h *AutocompleteHandler) HandleSeekPosition(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), autocompleteTimeout)
	defer cancel()

	inv, ok := parseInvocation(i)
	if !ok {
		return respondChoices(r, nil)
	}

	var typed string
	if opt := focusedOption(i); opt != nil {
		typed = strings.ToLower(strings.TrimSpace(opt.StringValue()))
	}

	output, err := h.playback.NowPlaying(ctx, usecases.NowPlayingInput{GuildID: inv.guildID})
	if err != nil {
		// Nothing playing: no chapters to offer
		return respondChoices(r, nil)
	}

	chapters := lo.Filter(output.Entry.Track.Chapters, func(chapter usecases.Chapter, _ int) bool {
		return typed == "" || strings.Contains(strings.ToLower(chapter.Title), typed)
	})
	choices := lo.Map(chapters, func(chapter usecases.Chapter, _ int) *discordgo.ApplicationCommandOptionChoice {
		return &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(fmt.Sprintf("%s %s", usecases.FormatDuration(chapter.Start), chapter.Title), maxChoiceLength),
			Value: truncate(chapter.Title, maxChoiceLength),
		}
	})

	return respondChoices(r, lo.Slice(choices, 0, maxChoices))
}

func focusedOption(i *discordgo.InteractionCreate) *discordgo.ApplicationCommandInteractionDataOption {
	option, _ := lo.Find(i.ApplicationCommandData().Options, func(opt *discordgo.ApplicationCommandInteractionDataOption) bool {
		return opt.Focused
	})
	return option
}

func respondChoices(r bot.Responder, choices []*discordgo.ApplicationCommandOptionChoice) error {
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
}
