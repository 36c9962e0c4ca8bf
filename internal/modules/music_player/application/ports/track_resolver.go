package ports

import (
	"context"
)

// TrackResolver defines the interface for loading/searching tracks.
type TrackResolver interface {
	// LoadTracks resolves a Lavalink-formatted query (URL or "<source>:<term>").
	LoadTracks(ctx context.Context, query string) (*LoadResult, error)
}
