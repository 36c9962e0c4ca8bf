package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/usecases"
)

// Commands returns all slash commands for the music player module.
// Every command is guild-only.
func Commands() []*discordgo.ApplicationCommand {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "join",
			Description: "Join a voice channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Voice channel to join (defaults to your current channel)",
					Required:    false,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildVoice,
						discordgo.ChannelTypeGuildStageVoice,
					},
				},
			},
		},
		{
			Name:        "leave",
			Description: "Leave the voice channel and drop the queue",
		},
		{
			Name:        "play",
			Description: "Play a track or playlist from a URL or search",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "query",
					Description:  "URL or search term",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "insert",
			Description: "Insert a track at a position in the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "query",
					Description:  "URL or search term",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "position",
					Description: "Queue position (defaults to the front of the queue)",
					Required:    false,
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "search",
			Description: "Search for a track and pick one from the results",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Search term",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "results",
					Description: "Number of results to show",
					Required:    false,
					MinValue:    floatPtr(usecases.MinSearchResults),
					MaxValue:    usecases.MaxSearchResults,
				},
			},
		},
		{
			Name:        "skip",
			Description: "Skip the current track",
		},
		{
			Name:        "stop",
			Description: "Stop playback and clear the queue",
		},
		{
			Name:        "pause",
			Description: "Pause playback",
		},
		{
			Name:        "resume",
			Description: "Resume playback",
		},
		{
			Name:        "seek",
			Description: "Seek within the current track",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "position",
					Description:  "Timestamp (ss, mm:ss, hh:mm:ss) or chapter title",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "loop",
			Description: "Toggle looping of the current track",
		},
		{
			Name:        "loop-queue",
			Description: "Toggle looping of the queue",
		},
		{
			Name:        "queue",
			Description: "Show the queue",
		},
		{
			Name:        "now-playing",
			Description: "Show the current track and its progress",
		},
		{
			Name:        "remove",
			Description: "Remove a track from the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionInteger,
					Name:         "position",
					Description:  "Position of the track to remove (as shown in /queue)",
					Required:     true,
					MinValue:     floatPtr(1),
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "clear-queue",
			Description: "Remove every upcoming track",
		},
		{
			Name:        "shuffle",
			Description: "Shuffle the upcoming tracks",
		},
	}

	dmPermission := false
	for _, cmd := range commands {
		cmd.DMPermission = &dmPermission
	}

	return commands
}

func floatPtr(f float64) *float64 {
	return &f
}
