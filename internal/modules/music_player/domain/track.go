package domain

import (
	"strconv"
	"strings"
	"time"
)

// TrackID is the resolver's identifier for a track (e.g. a YouTube video ID).
type TrackID string

// Chapter is a named mark within a track.
type Chapter struct {
	Title string
	Start time.Duration
}

// Track represents a resolved, playable audio track. Tracks are values:
// every queue holds its own copy.
type Track struct {
	ID            TrackID
	Encoded       string // Lavalink encoded track data
	Title         string
	Artist        string
	ArtistIconURL string
	Duration      time.Duration
	URI           string
	ArtworkURL    string
	SourceName    string // e.g., "youtube", "spotify", "soundcloud"
	IsStream      bool
	Chapters      []Chapter // ordered by Start
}

// Source returns the parsed TrackSource for this track.
func (t Track) Source() TrackSource {
	return ParseTrackSource(t.SourceName)
}

// IsValid returns true if the track has the minimum required fields.
func (t Track) IsValid() bool {
	return t.Encoded != "" && t.Title != ""
}

// Length returns the duration used for time accounting.
// Streams and tracks without a known duration count as zero.
func (t Track) Length() time.Duration {
	if t.IsStream || t.Duration < 0 {
		return 0
	}
	return t.Duration
}

// ChapterAt returns the chapter containing the given offset, or nil if the
// track has no chapter covering it.
func (t Track) ChapterAt(offset time.Duration) *Chapter {
	var found *Chapter
	for i := range t.Chapters {
		if t.Chapters[i].Start > offset {
			break
		}
		found = &t.Chapters[i]
	}
	return found
}

// FindChapter returns the first chapter whose title matches (case-insensitive).
func (t Track) FindChapter(title string) (Chapter, bool) {
	title = strings.TrimSpace(title)
	for _, c := range t.Chapters {
		if strings.EqualFold(c.Title, title) {
			return c, true
		}
	}
	return Chapter{}, false
}

// FormattedDuration returns the duration as a human-readable string (mm:ss or hh:mm:ss).
func (t Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}
	return FormatDuration(t.Duration)
}

// FormatDuration formats d as mm:ss, or hh:mm:ss when it exceeds an hour.
// Negative durations format as 00:00.
func FormatDuration(d time.Duration) string {
	totalSeconds := max(int(d.Seconds()), 0)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
