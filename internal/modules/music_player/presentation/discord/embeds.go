package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/usecases"
)

func trackAddedEmbed(
	track usecases.Track,
	started bool,
	position int,
	eta time.Duration,
) *discordgo.MessageEmbed {
	source := track.Source()

	author := "Added to queue"
	if started {
		author = "Now playing"
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    author,
			IconURL: source.IconURL(),
		},
		Title: track.Title,
		URL:   track.URI,
		Color: source.Color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Artist", Value: track.Artist, Inline: true},
			{Name: "Duration", Value: track.FormattedDuration(), Inline: true},
		},
	}

	if !started {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Position", Value: fmt.Sprint(position), Inline: true},
			&discordgo.MessageEmbedField{Name: "Plays in", Value: formatETA(eta), Inline: true},
		)
	}

	if track.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: track.ArtworkURL}
	}

	return embed
}

func playlistAddedEmbed(name string, added *usecases.QueueAddOutput) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: fmt.Sprintf(
			"Added **%s** from playlist **%s** to the queue.",
			pluralize(added.Added, "track", "tracks"),
			name,
		),
		Color: colorSuccess,
	}

	if !added.Started {
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Position", Value: fmt.Sprint(added.Position), Inline: true},
			{Name: "Plays in", Value: formatETA(added.ETA), Inline: true},
		}
	}

	return embed
}

func nowPlayingEmbed(output *usecases.NowPlayingOutput) *discordgo.MessageEmbed {
	track := output.Entry.Track
	source := track.Source()

	author := "Now Playing"
	if output.Paused {
		author = "Paused"
	}

	var progress string
	if track.IsStream {
		progress = fmt.Sprintf("🔴 LIVE `%s`", usecases.FormatDuration(output.Elapsed))
	} else {
		progress = fmt.Sprintf(
			"%s\n`%s / %s`",
			progressBar(output.Elapsed, track.Duration),
			usecases.FormatDuration(output.Elapsed),
			track.FormattedDuration(),
		)
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    author,
			IconURL: source.IconURL(),
		},
		Title:       track.Title,
		URL:         track.URI,
		Description: progress,
		Color:       source.Color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Artist", Value: track.Artist, Inline: true},
			{Name: "Requested by", Value: fmt.Sprintf("<@%d>", output.Entry.RequesterID), Inline: true},
		},
	}

	if output.Chapter != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Chapter",
			Value: output.Chapter.Title,
		})
	}
	if loop := loopLabel(output.LoopTrack, output.LoopQueue); loop != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Loop",
			Value:  loop,
			Inline: true,
		})
	}
	if output.UpNext != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Up Next",
			Value: trackLink(output.UpNext.Track),
		})
	}
	if track.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: track.ArtworkURL}
	}

	return embed
}

func queueEmbed(output *usecases.QueueListOutput) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Queue",
		Color: colorInfo,
	}

	if output.NowPlaying == nil && output.TotalTracks == 0 {
		embed.Description = "Nothing is playing and the queue is empty."
		return embed
	}

	var sb strings.Builder
	if output.NowPlaying != nil {
		sb.WriteString("### Now Playing\n")

		state := fmt.Sprintf("`%s` left", usecases.FormatDuration(output.Remaining))
		if output.NowPlaying.Track.IsStream {
			state = "`LIVE`"
		}
		if output.Status == usecases.StatusPaused {
			state += " (paused)"
		}
		fmt.Fprintf(&sb, "%s - %s %s\n", trackLink(output.NowPlaying.Track), output.NowPlaying.Track.Artist, state)
	}

	sb.WriteString("### Up Next\n")
	if output.TotalTracks == 0 {
		sb.WriteString("The queue is empty.\n")
	}
	for idx, entry := range output.Entries {
		writeTrackLine(&sb, output.PageOffset+idx+1, entry)
	}

	embed.Description = sb.String()

	footer := []string{
		fmt.Sprintf("Page %d/%d", output.CurrentPage, output.TotalPages),
		pluralize(output.TotalTracks, "track", "tracks"),
		"Total " + usecases.FormatDuration(output.TotalRemaining),
	}
	if loop := loopLabel(output.LoopTrack, output.LoopQueue); loop != "" {
		footer = append(footer, "Loop: "+loop)
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: strings.Join(footer, " | ")}

	return embed
}

func searchEmbed(query string, tracks []usecases.Track) *discordgo.MessageEmbed {
	var sb strings.Builder
	for idx, track := range tracks {
		fmt.Fprintf(
			&sb,
			"%d\\. %s - %s `%s`\n",
			idx+1,
			trackLink(track),
			track.Artist,
			track.FormattedDuration(),
		)
	}

	return &discordgo.MessageEmbed{
		Title:       truncate(fmt.Sprintf("Results for %q", query), 256),
		Description: sb.String(),
		Color:       colorInfo,
	}
}

func loopLabel(loopTrack, loopQueue bool) string {
	switch {
	case loopTrack && loopQueue:
		return "Track, Queue"
	case loopTrack:
		return "Track"
	case loopQueue:
		return "Queue"
	default:
		return ""
	}
}
