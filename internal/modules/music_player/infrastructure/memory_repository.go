package infrastructure

import (
	"context"
	"errors"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// ErrPlayerStateNotFound is returned when a guild has no player state.
var ErrPlayerStateNotFound = errors.New("player state not found")

// MemoryRepository is an in-memory implementation of PlayerStateRepository.
// States are shared by pointer; callers serialize mutation per guild.
type MemoryRepository struct {
	mu     sync.RWMutex
	states map[snowflake.ID]*domain.PlayerState
}

// NewMemoryRepository creates a new MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		states: make(map[snowflake.ID]*domain.PlayerState),
	}
}

// Get returns the PlayerState for the given guild, or ErrPlayerStateNotFound.
func (r *MemoryRepository) Get(
	_ context.Context,
	guildID snowflake.ID,
) (*domain.PlayerState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[guildID]
	if !ok {
		return nil, ErrPlayerStateNotFound
	}
	return state, nil
}

// Save stores the PlayerState under its guild ID.
func (r *MemoryRepository) Save(_ context.Context, state *domain.PlayerState) error {
	if state == nil {
		return errors.New("cannot save nil player state")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[state.GetGuildID()] = state
	return nil
}

// Delete removes the PlayerState for the given guild.
func (r *MemoryRepository) Delete(_ context.Context, guildID snowflake.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, guildID)
	return nil
}

// Count returns the number of connected guilds.
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.states)
}

// GuildIDs returns the IDs of all guilds with a player state.
func (r *MemoryRepository) GuildIDs() []snowflake.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]snowflake.ID, 0, len(r.states))
	for id := range r.states {
		ids = append(ids, id)
	}
	return ids
}

// Ensure MemoryRepository implements PlayerStateRepository.
var _ domain.PlayerStateRepository = (*MemoryRepository)(nil)
