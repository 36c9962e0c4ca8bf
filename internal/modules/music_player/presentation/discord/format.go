package discord

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sglre6355/rythm/internal/modules/music_player/application/usecases"
)

const progressBarWidth = 20

// trackLink renders a track title as a markdown link when it has a URI.
func trackLink(track usecases.Track) string {
	if track.URI != "" {
		return fmt.Sprintf("[%s](%s)", track.Title, track.URI)
	}
	return fmt.Sprintf("**%s**", track.Title)
}

// writeTrackLine writes a single queue line to the string builder.
// Escapes period to prevent Discord markdown list formatting.
func writeTrackLine(sb *strings.Builder, position int, entry usecases.QueueEntry) {
	fmt.Fprintf(
		sb,
		"%d\\. %s - %s `%s` <@%d>\n",
		position,
		trackLink(entry.Track),
		entry.Track.Artist,
		entry.Track.FormattedDuration(),
		entry.RequesterID,
	)
}

// formatETA renders the wait before a newly queued track plays.
func formatETA(eta time.Duration) string {
	if eta <= 0 {
		return "Now"
	}
	return usecases.FormatDuration(eta)
}

// progressBar draws elapsed against total as a slider.
func progressBar(elapsed, total time.Duration) string {
	if total <= 0 {
		return strings.Repeat("▬", progressBarWidth)
	}

	knob := int(float64(progressBarWidth-1) * float64(elapsed) / float64(total))
	knob = min(max(knob, 0), progressBarWidth-1)

	return strings.Repeat("▬", knob) + "🔘" + strings.Repeat("▬", progressBarWidth-1-knob)
}

// parseSeekPosition parses ss, mm:ss, or hh:mm:ss. Each component after the
// first must be below 60.
func parseSeekPosition(s string) (time.Duration, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, false
	}

	var total int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, false
		}
		if i > 0 && n >= 60 {
			return 0, false
		}
		total = total*60 + n
	}

	return time.Duration(total) * time.Second, true
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
