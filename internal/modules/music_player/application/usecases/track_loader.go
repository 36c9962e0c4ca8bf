package usecases

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

const (
	MinSearchResults = 5
	MaxSearchResults = 20
)

// LoadTracksInput contains the input for the LoadTracks use case.
type LoadTracksInput struct {
	Query string
}

// LoadTracksOutput contains the result of the LoadTracks use case.
type LoadTracksOutput struct {
	List domain.TrackList
}

// SearchTracksInput contains the input for the SearchTracks use case.
type SearchTracksInput struct {
	Query string
	Limit int // clamped to [MinSearchResults, MaxSearchResults]
}

// SearchTracksOutput contains the result of the SearchTracks use case.
type SearchTracksOutput struct {
	Tracks []domain.Track
}

// TrackLoaderService handles track loading operations. It never touches
// player state, so it runs outside the guild executor.
type TrackLoaderService struct {
	trackResolver ports.TrackResolver
}

// NewTrackLoaderService creates a new TrackLoaderService.
func NewTrackLoaderService(trackResolver ports.TrackResolver) *TrackLoaderService {
	return &TrackLoaderService{
		trackResolver: trackResolver,
	}
}

// LoadTracks resolves a query. A URL yields its track, a playlist URL yields
// every track of the playlist, and a search term yields its best match.
func (s *TrackLoaderService) LoadTracks(
	ctx context.Context,
	input LoadTracksInput,
) (*LoadTracksOutput, error) {
	result, err := s.load(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	list := domain.TrackList{
		Type:   domain.TrackListTypeTrack,
		Tracks: tracksFromInfos(result.Tracks),
	}

	switch result.Type {
	case ports.LoadTypePlaylist:
		list.Type = domain.TrackListTypePlaylist
		list.Name = result.PlaylistName
	case ports.LoadTypeSearch:
		list.Type = domain.TrackListTypeSearch
		list.Tracks = list.Tracks[:1]
	}

	return &LoadTracksOutput{List: list}, nil
}

// SearchTracks searches for tracks matching the query.
func (s *TrackLoaderService) SearchTracks(
	ctx context.Context,
	input SearchTracksInput,
) (*SearchTracksOutput, error) {
	if input.Query == "" {
		return nil, ErrNoResults
	}

	result, err := s.load(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	limit := min(max(input.Limit, MinSearchResults), MaxSearchResults, len(result.Tracks))

	return &SearchTracksOutput{
		Tracks: tracksFromInfos(result.Tracks[:limit]),
	}, nil
}

// load runs the query through the resolver and maps empty and error results
// to ErrNoResults and ErrLoadFailed.
func (s *TrackLoaderService) load(ctx context.Context, rawQuery string) (*ports.LoadResult, error) {
	query := domain.NewSearchQuery(rawQuery)
	result, err := s.trackResolver.LoadTracks(ctx, query.LavalinkQuery())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	switch {
	case result.Type == ports.LoadTypeError:
		return nil, fmt.Errorf("%w: %s", ErrLoadFailed, result.Error)
	case result.Type == ports.LoadTypeEmpty || len(result.Tracks) == 0:
		return nil, ErrNoResults
	}

	return result, nil
}

func tracksFromInfos(infos []*ports.TrackInfo) []domain.Track {
	return lo.Map(infos, func(info *ports.TrackInfo, _ int) domain.Track {
		return trackFromInfo(info)
	})
}

func trackFromInfo(info *ports.TrackInfo) domain.Track {
	return domain.Track{
		ID:         domain.TrackID(info.Identifier),
		Encoded:    info.Encoded,
		Title:      info.Title,
		Artist:     info.Artist,
		Duration:   info.Duration,
		URI:        info.URI,
		ArtworkURL: info.ArtworkURL,
		SourceName: info.SourceName,
		IsStream:   info.IsStream,
		Chapters: lo.Map(info.Chapters, func(c ports.ChapterInfo, _ int) domain.Chapter {
			return domain.Chapter{Title: c.Title, Start: c.Start}
		}),
	}
}
