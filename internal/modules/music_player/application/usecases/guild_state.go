package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// updateState runs fn on the guild's executor against the stored PlayerState
// and saves the state when fn succeeds. A missing state yields ErrNotConnected.
func updateState(
	ctx context.Context,
	executor ports.GuildExecutor,
	repo domain.PlayerStateRepository,
	guildID snowflake.ID,
	fn func(ctx context.Context, state *domain.PlayerState) error,
) error {
	return executor.Do(ctx, guildID, func(ctx context.Context) error {
		state, err := repo.Get(ctx, guildID)
		if err != nil {
			return ErrNotConnected
		}

		if err := fn(ctx, state); err != nil {
			return err
		}

		return repo.Save(ctx, state)
	})
}

// viewState runs fn on the guild's executor against the stored PlayerState
// without saving it.
func viewState(
	ctx context.Context,
	executor ports.GuildExecutor,
	repo domain.PlayerStateRepository,
	guildID snowflake.ID,
	fn func(state *domain.PlayerState) error,
) error {
	return executor.Do(ctx, guildID, func(ctx context.Context) error {
		state, err := repo.Get(ctx, guildID)
		if err != nil {
			return ErrNotConnected
		}
		return fn(state)
	})
}
