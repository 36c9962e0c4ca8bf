package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/modules/music_player/domain"
)

// AudioPlayer defines the interface for audio playback operations.
type AudioPlayer interface {
	// Play starts streaming the given track from position, replacing any current stream.
	// Stream-end events reported afterwards carry playbackSeq.
	Play(
		ctx context.Context,
		guildID snowflake.ID,
		track domain.Track,
		position time.Duration,
		playbackSeq uint64,
	) error

	// Seek moves the current stream to position.
	Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error

	// Stop stops the current playback.
	Stop(ctx context.Context, guildID snowflake.ID) error

	// Pause pauses the current playback.
	Pause(ctx context.Context, guildID snowflake.ID) error

	// Resume resumes the paused playback.
	Resume(ctx context.Context, guildID snowflake.ID) error
}
