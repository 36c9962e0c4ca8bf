package music_player

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/samber/lo"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/usecases"
)

// Config holds the music player module configuration.
type Config struct {
	Lavalink LavalinkConfig `envPrefix:"LAVALINK_"`
	Music    MusicConfig    `envPrefix:"MUSIC_"`
}

// LavalinkConfig describes the Lavalink node that streams audio.
type LavalinkConfig struct {
	Address  string `env:"ADDRESS,notEmpty"`
	Password string `env:"PASSWORD,notEmpty"`
	NodeName string `env:"NODE_NAME" envDefault:"main"`
	Secure   bool   `env:"SECURE" envDefault:"false"`
}

// MusicConfig tunes playback and the interactive commands.
type MusicConfig struct {
	// MaxTrackFailures is how many times in a row one queue entry may fail to
	// stream before it is dropped instead of being recycled under loop-queue.
	MaxTrackFailures int           `env:"MAX_TRACK_FAILURES" envDefault:"3"`
	SearchResults    int           `env:"SEARCH_RESULTS" envDefault:"10"`
	SearchTimeout    time.Duration `env:"SEARCH_TIMEOUT" envDefault:"60s"`
	QueuePageTimeout time.Duration `env:"QUEUE_PAGE_TIMEOUT" envDefault:"5m"`
	SearchRate       float64       `env:"SEARCH_RATE" envDefault:"1"`
	SearchBurst      int           `env:"SEARCH_BURST" envDefault:"3"`
}

// loadConfig parses the module configuration from environment variables.
func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.Music.MaxTrackFailures < 1 {
		return nil, errors.New("MUSIC_MAX_TRACK_FAILURES must be at least 1")
	}
	if cfg.Music.SearchTimeout <= 0 || cfg.Music.QueuePageTimeout <= 0 {
		return nil, errors.New("MUSIC_SEARCH_TIMEOUT and MUSIC_QUEUE_PAGE_TIMEOUT must be positive")
	}
	if cfg.Music.SearchRate <= 0 {
		return nil, errors.New("MUSIC_SEARCH_RATE must be positive")
	}

	cfg.Music.SearchResults = lo.Clamp(
		cfg.Music.SearchResults,
		usecases.MinSearchResults,
		usecases.MaxSearchResults,
	)
	cfg.Music.SearchBurst = max(cfg.Music.SearchBurst, 1)

	return cfg, nil
}
