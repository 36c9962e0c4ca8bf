package usecases

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

const DefaultPageSize = 10

// QueueAddInput contains the input for the QueueAdd use case.
type QueueAddInput struct {
	GuildID     snowflake.ID
	Tracks      []domain.Track // added in order; a playlist adds every track
	RequesterID snowflake.ID
}

// QueueAddOutput contains the result of the QueueAdd use case.
type QueueAddOutput struct {
	Started  bool          // the first track went straight to now playing
	Position int           // 1-based play position of the first track, 1 when Started
	ETA      time.Duration // estimated wait before the first track plays
	Added    int
}

// QueueInsertInput contains the input for the QueueInsert use case.
type QueueInsertInput struct {
	GuildID     snowflake.ID
	Track       domain.Track
	RequesterID snowflake.ID
	Position    int // 1-based; values below 1 insert at the head
}

// QueueInsertOutput contains the result of the QueueInsert use case.
type QueueInsertOutput struct {
	Started  bool
	Position int
	ETA      time.Duration
}

// QueueListInput contains the input for the QueueList use case.
type QueueListInput struct {
	GuildID  snowflake.ID
	Page     int // 1-indexed page number
	PageSize int // Items per page (optional, defaults to 10)
}

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	NowPlaying *domain.QueueEntry // nil when idle
	Status     domain.PlayerStatus
	Elapsed    time.Duration
	Remaining  time.Duration

	Entries     []domain.QueueEntry // pending entries on the requested page
	PageOffset  int                 // pending index of Entries[0]
	TotalTracks int
	CurrentPage int
	TotalPages  int

	TotalRemaining time.Duration
	LoopTrack      bool
	LoopQueue      bool
}

// QueueRemoveInput contains the input for the QueueRemove use case.
type QueueRemoveInput struct {
	GuildID  snowflake.ID
	Position int // 1-based pending position
}

// QueueRemoveOutput contains the result of the QueueRemove use case.
type QueueRemoveOutput struct {
	Removed domain.QueueEntry
}

// QueueClearInput contains the input for the QueueClear use case.
type QueueClearInput struct {
	GuildID snowflake.ID
}

// QueueClearOutput contains the result of the QueueClear use case.
type QueueClearOutput struct {
	ClearedCount int
}

// QueueShuffleInput contains the input for the QueueShuffle use case.
type QueueShuffleInput struct {
	GuildID snowflake.ID
}

// QueueShuffleOutput contains the result of the QueueShuffle use case.
type QueueShuffleOutput struct {
	Count int
}

// QueueService handles queue operations.
type QueueService struct {
	repo     domain.PlayerStateRepository
	executor ports.GuildExecutor
	driver   *playbackDriver
	now      func() time.Time
}

// NewQueueService creates a new QueueService.
func NewQueueService(
	repo domain.PlayerStateRepository,
	executor ports.GuildExecutor,
	audioPlayer ports.AudioPlayer,
	publisher ports.EventPublisher,
	maxFailures int,
) *QueueService {
	return &QueueService{
		repo:     repo,
		executor: executor,
		driver:   newPlaybackDriver(audioPlayer, publisher, maxFailures),
		now:      time.Now,
	}
}

// Add appends tracks to the queue. An idle player starts the first one.
func (q *QueueService) Add(ctx context.Context, input QueueAddInput) (*QueueAddOutput, error) {
	if len(input.Tracks) == 0 {
		return nil, ErrNoResults
	}

	var output QueueAddOutput
	err := updateState(ctx, q.executor, q.repo, input.GuildID,
		func(ctx context.Context, state *domain.PlayerState) error {
			now := q.now()

			for i, track := range input.Tracks {
				result := state.Enqueue(domain.NewQueueEntry(track, input.RequesterID, now), now)
				if i == 0 {
					output.Started = result.Started
					output.Position = result.Position
					output.ETA = result.ETA
				}
			}
			output.Added = len(input.Tracks)

			if output.Started {
				q.driver.playCurrent(ctx, state, now)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return &output, nil
}

// Insert places a track at a pending position. An idle player starts it.
func (q *QueueService) Insert(
	ctx context.Context,
	input QueueInsertInput,
) (*QueueInsertOutput, error) {
	var output QueueInsertOutput
	err := updateState(ctx, q.executor, q.repo, input.GuildID,
		func(ctx context.Context, state *domain.PlayerState) error {
			now := q.now()

			entry := domain.NewQueueEntry(input.Track, input.RequesterID, now)
			result := state.InsertAt(entry, input.Position, now)
			output = QueueInsertOutput(result)

			if result.Started {
				q.driver.playCurrent(ctx, state, now)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return &output, nil
}

// List returns the now playing entry and one page of the pending queue.
func (q *QueueService) List(ctx context.Context, input QueueListInput) (*QueueListOutput, error) {
	// Validate and set defaults
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}

	var output QueueListOutput
	err := viewState(ctx, q.executor, q.repo, input.GuildID, func(state *domain.PlayerState) error {
		now := q.now()
		pending := state.Pending()

		totalTracks := len(pending)
		totalPages := max((totalTracks+pageSize-1)/pageSize, 1)

		// Clamp page to valid range
		page = min(page, totalPages)

		start := (page - 1) * pageSize
		end := min(start+pageSize, totalTracks)

		var entries []domain.QueueEntry
		if start < totalTracks {
			entries = pending[start:end]
		}

		output = QueueListOutput{
			NowPlaying:     state.Current(),
			Status:         state.Status(),
			Elapsed:        state.Elapsed(now),
			Remaining:      state.Remaining(now),
			Entries:        entries,
			PageOffset:     start,
			TotalTracks:    totalTracks,
			CurrentPage:    page,
			TotalPages:     totalPages,
			TotalRemaining: state.TotalRemaining(now),
			LoopTrack:      state.LoopTrack(),
			LoopQueue:      state.LoopQueue(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &output, nil
}

// Remove removes the pending entry at the given 1-based position.
func (q *QueueService) Remove(
	ctx context.Context,
	input QueueRemoveInput,
) (*QueueRemoveOutput, error) {
	var removed domain.QueueEntry
	err := updateState(ctx, q.executor, q.repo, input.GuildID,
		func(_ context.Context, state *domain.PlayerState) error {
			var err error
			removed, err = state.RemoveAt(input.Position)
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	return &QueueRemoveOutput{Removed: removed}, nil
}

// Clear empties the pending queue. The now playing track keeps playing.
func (q *QueueService) Clear(ctx context.Context, input QueueClearInput) (*QueueClearOutput, error) {
	var cleared int
	err := updateState(ctx, q.executor, q.repo, input.GuildID,
		func(_ context.Context, state *domain.PlayerState) error {
			var err error
			cleared, err = state.ClearQueue()
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	return &QueueClearOutput{ClearedCount: cleared}, nil
}

// Shuffle randomly reorders the pending queue.
func (q *QueueService) Shuffle(
	ctx context.Context,
	input QueueShuffleInput,
) (*QueueShuffleOutput, error) {
	var count int
	err := updateState(ctx, q.executor, q.repo, input.GuildID,
		func(_ context.Context, state *domain.PlayerState) error {
			if err := state.Shuffle(); err != nil {
				return err
			}
			count = state.PendingLen()
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return &QueueShuffleOutput{Count: count}, nil
}
