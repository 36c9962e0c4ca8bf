package domain

import (
	"strings"
)

// SearchSource represents the source for searching tracks.
type SearchSource string

const (
	// SourceYouTube searches YouTube.
	SourceYouTube SearchSource = "ytsearch"
	// SourceYouTubeMusic searches YouTube Music.
	SourceYouTubeMusic SearchSource = "ytmsearch"
	// SourceSoundCloud searches SoundCloud.
	SourceSoundCloud SearchSource = "scsearch"
	// SourceDirect indicates a direct URL (no search prefix).
	SourceDirect SearchSource = ""
)

var knownSearchSources = []SearchSource{SourceYouTube, SourceYouTubeMusic, SourceSoundCloud}

// SearchQuery represents a query for resolving tracks.
type SearchQuery struct {
	Query  string       // The search term or URL
	Source SearchSource // The search source
	IsURL  bool         // Whether the query is a direct URL
}

// NewSearchQuery creates a SearchQuery from user input, searching YouTube
// unless the input is a URL or already carries a source prefix.
func NewSearchQuery(input string) *SearchQuery {
	return NewSearchQueryWithSource(input, SourceYouTube)
}

// NewSearchQueryWithSource creates a SearchQuery with a specific default source.
func NewSearchQueryWithSource(input string, source SearchSource) *SearchQuery {
	input = strings.TrimSpace(input)

	if isURL(input) {
		return &SearchQuery{
			Query:  input,
			Source: SourceDirect,
			IsURL:  true,
		}
	}

	for _, known := range knownSearchSources {
		if term, ok := strings.CutPrefix(input, string(known)+":"); ok {
			return &SearchQuery{
				Query:  strings.TrimSpace(term),
				Source: known,
			}
		}
	}

	return &SearchQuery{
		Query:  input,
		Source: source,
	}
}

// LavalinkQuery returns the query string formatted for Lavalink.
func (q *SearchQuery) LavalinkQuery() string {
	if q.IsURL {
		if strings.HasPrefix(q.Query, "www.") {
			return "https://" + q.Query
		}
		return q.Query
	}
	return string(q.Source) + ":" + q.Query
}

// IsValid returns true if the query is not empty.
func (q *SearchQuery) IsValid() bool {
	return q.Query != ""
}

// isURL checks if the input looks like a URL.
func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}
