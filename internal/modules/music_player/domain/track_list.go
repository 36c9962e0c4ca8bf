package domain

// TrackListType represents what a resolver query produced.
type TrackListType int

const (
	TrackListTypeTrack TrackListType = iota
	TrackListTypePlaylist
	TrackListTypeSearch
)

// TrackList is the result of resolving a query.
type TrackList struct {
	Type   TrackListType
	Name   string // playlist name, empty otherwise
	Tracks []Track
}

// IsPlaylist returns true if the list came from a playlist URL.
func (l TrackList) IsPlaylist() bool {
	return l.Type == TrackListTypePlaylist
}
