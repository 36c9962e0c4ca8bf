package usecases

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// GetQueueEntriesInput contains the input for the GetQueueEntries use case.
type GetQueueEntriesInput struct {
	GuildID snowflake.ID
}

// GetQueueEntriesOutput contains the output for the GetQueueEntries use case.
type GetQueueEntriesOutput struct {
	Entries []domain.QueueEntry // pending entries in playback order
}

// AutocompleteService handles autocomplete-related operations.
type AutocompleteService struct {
	repo     domain.PlayerStateRepository
	executor ports.GuildExecutor
	loader   *TrackLoaderService
}

// NewAutocompleteService creates a new AutocompleteService.
func NewAutocompleteService(
	repo domain.PlayerStateRepository,
	executor ports.GuildExecutor,
	trackResolver ports.TrackResolver,
) *AutocompleteService {
	return &AutocompleteService{
		repo:     repo,
		executor: executor,
		loader:   NewTrackLoaderService(trackResolver),
	}
}

// GetQueueEntries returns the pending entries for autocomplete suggestions.
// A guild without a player yields no entries.
func (s *AutocompleteService) GetQueueEntries(
	ctx context.Context,
	input GetQueueEntriesInput,
) *GetQueueEntriesOutput {
	var entries []domain.QueueEntry
	_ = viewState(ctx, s.executor, s.repo, input.GuildID, func(state *domain.PlayerState) error {
		entries = state.Pending()
		return nil
	})

	return &GetQueueEntriesOutput{Entries: entries}
}

// LoadTracksForAutocompleteInput contains the input for playlist-aware autocomplete.
type LoadTracksForAutocompleteInput struct {
	Query string
	Limit int // Max individual tracks to return (default 24, leaving room for playlist option)
}

// LoadTracksForAutocompleteOutput contains the result for playlist-aware autocomplete.
type LoadTracksForAutocompleteOutput struct {
	IsPlaylist   bool
	PlaylistName string
	PlaylistURL  string         // Original URL for "add all" option
	TrackCount   int            // Total tracks in playlist
	Tracks       []domain.Track // Individual tracks (limited)
}

// LoadTracksForAutocomplete loads tracks for autocomplete, with special handling for playlists.
// For playlists, returns playlist metadata and a limited list of individual tracks.
// Queries that resolve to nothing yield an empty output rather than an error.
func (s *AutocompleteService) LoadTracksForAutocomplete(
	ctx context.Context,
	input LoadTracksForAutocompleteInput,
) (*LoadTracksForAutocompleteOutput, error) {
	result, err := s.loader.load(ctx, input.Query)
	if errors.Is(err, ErrNoResults) || errors.Is(err, ErrLoadFailed) {
		return &LoadTracksForAutocompleteOutput{}, nil
	}
	if err != nil {
		return nil, err
	}

	// Determine limit (default 24 to leave room for playlist option)
	limit := input.Limit
	if limit <= 0 {
		limit = 24
	}

	infos := result.Tracks
	if len(infos) > limit {
		infos = infos[:limit]
	}

	output := &LoadTracksForAutocompleteOutput{
		TrackCount: len(result.Tracks),
		Tracks:     tracksFromInfos(infos),
	}
	if result.Type == ports.LoadTypePlaylist {
		output.IsPlaylist = true
		output.PlaylistName = result.PlaylistName
		output.PlaylistURL = input.Query
	}

	return output, nil
}
