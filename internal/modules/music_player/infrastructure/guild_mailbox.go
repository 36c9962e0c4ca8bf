package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/rythm/internal/modules/music_player/application/ports"
)

// ErrExecutorClosed is returned by Do after Close.
var ErrExecutorClosed = errors.New("guild executor closed")

// Ensure GuildMailbox implements ports.GuildExecutor.
var _ ports.GuildExecutor = (*GuildMailbox)(nil)

type job struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
}

// mailbox is one guild's worker. quit asks the worker to stop; done is closed
// by the worker once it has stopped.
type mailbox struct {
	jobs chan job
	quit chan struct{}
	done chan struct{}
}

// GuildMailbox runs jobs on one goroutine per guild, so that everything that
// touches a guild's player state happens in submission order.
type GuildMailbox struct {
	mu        sync.Mutex
	mailboxes map[snowflake.ID]*mailbox
	closed    bool
	wg        sync.WaitGroup
}

// NewGuildMailbox creates a new GuildMailbox.
func NewGuildMailbox() *GuildMailbox {
	return &GuildMailbox{
		mailboxes: make(map[snowflake.ID]*mailbox),
	}
}

// Do runs fn on the guild's worker and waits for its result. If ctx is done
// before the worker picks the job up, the job is abandoned and ctx's error is
// returned. Once picked up, the job runs to completion and Do returns fn's
// result, so a caller never reports failure for a change that was applied.
func (g *GuildMailbox) Do(
	ctx context.Context,
	guildID snowflake.ID,
	fn func(ctx context.Context) error,
) error {
	j := job{ctx: ctx, fn: fn, result: make(chan error, 1)}

	for {
		mb, err := g.mailbox(guildID)
		if err != nil {
			return err
		}

		select {
		case mb.jobs <- j:
			// The worker always answers a job it received.
			return <-j.result
		case <-mb.done:
			// Released between lookup and hand-off; retry on a fresh worker.
			continue
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Release stops the guild's worker once its current job returns.
func (g *GuildMailbox) Release(guildID snowflake.ID) {
	g.mu.Lock()
	mb, ok := g.mailboxes[guildID]
	if ok {
		delete(g.mailboxes, guildID)
	}
	g.mu.Unlock()

	if ok {
		close(mb.quit)
		slog.Debug("released guild worker", "guild", guildID)
	}
}

// Active returns the number of running guild workers.
func (g *GuildMailbox) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.mailboxes)
}

// Close stops every worker and waits for running jobs to return.
func (g *GuildMailbox) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	mailboxes := g.mailboxes
	g.mailboxes = make(map[snowflake.ID]*mailbox)
	g.mu.Unlock()

	for _, mb := range mailboxes {
		close(mb.quit)
	}
	g.wg.Wait()

	slog.Debug("guild mailbox closed")
}

func (g *GuildMailbox) mailbox(guildID snowflake.ID) (*mailbox, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil, ErrExecutorClosed
	}

	if mb, ok := g.mailboxes[guildID]; ok {
		return mb, nil
	}

	mb := &mailbox{
		jobs: make(chan job),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	g.mailboxes[guildID] = mb

	g.wg.Add(1)
	go g.run(mb)

	return mb, nil
}

func (g *GuildMailbox) run(mb *mailbox) {
	defer g.wg.Done()
	defer close(mb.done)

	for {
		select {
		case j := <-mb.jobs:
			if err := j.ctx.Err(); err != nil {
				j.result <- err
				continue
			}
			j.result <- j.fn(j.ctx)
		case <-mb.quit:
			return
		}
	}
}
