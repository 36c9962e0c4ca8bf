package domain

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// PlayerStateRepository defines the interface for storing and retrieving player states.
type PlayerStateRepository interface {
	// Get returns the PlayerState for the given guild, or error if not exists.
	Get(ctx context.Context, guildID snowflake.ID) (*PlayerState, error)

	// Save stores the PlayerState.
	Save(ctx context.Context, state *PlayerState) error

	// Delete removes the PlayerState for the given guild.
	Delete(ctx context.Context, guildID snowflake.ID) error
}
