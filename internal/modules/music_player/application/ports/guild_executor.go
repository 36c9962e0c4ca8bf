package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// GuildExecutor serializes work per guild. Jobs for one guild run one at a
// time in submission order; jobs for different guilds run concurrently.
type GuildExecutor interface {
	// Do runs fn on the guild's worker and waits for its result.
	// A job that has started is not abandoned when ctx ends: Do returns
	// fn's result. fn must not call Do for the same guild.
	Do(ctx context.Context, guildID snowflake.ID, fn func(ctx context.Context) error) error

	// Release stops the guild's worker once its current job returns.
	// A later Do for the guild starts a fresh worker.
	Release(guildID snowflake.ID)
}
