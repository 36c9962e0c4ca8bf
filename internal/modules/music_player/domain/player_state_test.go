package domain

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

const testGuildID = snowflake.ID(1)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestPlayerState() *PlayerState {
	return NewPlayerState(testGuildID, snowflake.ID(10), snowflake.ID(20))
}

func testEntry(id TrackID) QueueEntry {
	return QueueEntry{Track: Track{ID: id, Title: "Track " + string(id), Duration: 3 * time.Minute}}
}

func lengthEntry(id TrackID, length time.Duration) QueueEntry {
	return QueueEntry{Track: Track{ID: id, Title: "Track " + string(id), Duration: length}}
}

func pendingIDs(p *PlayerState) []TrackID {
	ids := make([]TrackID, 0, p.PendingLen())
	for _, e := range p.Pending() {
		ids = append(ids, e.Track.ID)
	}
	return ids
}

func currentID(p *PlayerState) TrackID {
	if c := p.Current(); c != nil {
		return c.Track.ID
	}
	return ""
}

func TestNewPlayerState(t *testing.T) {
	guildID := snowflake.ID(123456789)

	state := NewPlayerState(guildID, snowflake.ID(1), snowflake.ID(2))

	if state.GetGuildID() != guildID {
		t.Errorf("expected GuildID %d, got %d", guildID, state.GetGuildID())
	}
	if state.Status() != StatusIdle {
		t.Errorf("expected idle, got %s", state.Status())
	}
	if state.PendingLen() != 0 {
		t.Error("expected pending queue to be empty")
	}
	if state.LoopTrack() || state.LoopQueue() {
		t.Error("expected loop flags to be off")
	}
}

func TestPlayerState_Channels(t *testing.T) {
	state := newTestPlayerState()

	state.SetVoiceChannelID(999)
	state.SetNotificationChannelID(888)

	if state.GetVoiceChannelID() != 999 {
		t.Errorf("expected VoiceChannelID 999, got %d", state.GetVoiceChannelID())
	}
	if state.GetNotificationChannelID() != 888 {
		t.Errorf("expected NotificationChannelID 888, got %d", state.GetNotificationChannelID())
	}
}

func TestPlayerState_NowPlayingMessage(t *testing.T) {
	state := newTestPlayerState()

	if state.GetNowPlayingMessage() != nil {
		t.Fatal("expected no now playing message initially")
	}

	msg := NewNowPlayingMessage(5, 6, 0)
	state.SetNowPlayingMessage(&msg)

	got := state.GetNowPlayingMessage()
	if got == nil || got.ChannelID != 5 || got.MessageID != 6 {
		t.Fatalf("unexpected message %v", got)
	}

	got.MessageID = 7
	if state.GetNowPlayingMessage().MessageID != 6 {
		t.Error("expected GetNowPlayingMessage to return a copy")
	}

	state.ClearNowPlayingMessage()
	if state.GetNowPlayingMessage() != nil {
		t.Error("expected message to be cleared")
	}
}

func TestPlayerState_RecordNowPlayingMessage(t *testing.T) {
	state := newTestPlayerState()

	if state.RecordNowPlayingMessage(NewNowPlayingMessage(5, 6, 0)) {
		t.Error("expected an idle player to refuse the message")
	}

	state.Enqueue(testEntry("a"), t0)
	state.Enqueue(testEntry("b"), t0)
	announced := state.PlaybackSeq()

	if !state.RecordNowPlayingMessage(NewNowPlayingMessage(5, 6, announced)) {
		t.Fatal("expected the message for the current playback to be recorded")
	}
	if got := state.GetNowPlayingMessage(); got == nil || got.MessageID != 6 {
		t.Fatalf("unexpected message %v", got)
	}

	state.Advance(t0)
	state.ClearNowPlayingMessage()

	if state.RecordNowPlayingMessage(NewNowPlayingMessage(5, 7, announced)) {
		t.Error("expected a message for an ended playback to be refused")
	}
	if state.GetNowPlayingMessage() != nil {
		t.Error("expected no message to be stored")
	}
}

func TestPlayerState_Enqueue(t *testing.T) {
	t.Run("idle starts playback", func(t *testing.T) {
		state := newTestPlayerState()

		result := state.Enqueue(lengthEntry("a", 180*time.Second), t0)

		if !result.Started || result.Position != 1 || result.ETA != 0 {
			t.Errorf("unexpected result %+v", result)
		}
		if state.Status() != StatusPlaying {
			t.Errorf("expected playing, got %s", state.Status())
		}
		if currentID(state) != "a" {
			t.Errorf("expected a to be now playing, got %q", currentID(state))
		}
		if state.PendingLen() != 0 {
			t.Errorf("expected empty pending queue, got %d", state.PendingLen())
		}
	})

	t.Run("playing appends with ETA", func(t *testing.T) {
		state := newTestPlayerState()
		state.Enqueue(lengthEntry("a", 180*time.Second), t0)

		now := t0.Add(30 * time.Second)
		result := state.Enqueue(lengthEntry("b", 200*time.Second), now)

		if result.Started {
			t.Error("expected not started")
		}
		if result.Position != 1 {
			t.Errorf("expected position 1, got %d", result.Position)
		}
		if result.ETA != 150*time.Second {
			t.Errorf("expected ETA 150s, got %v", result.ETA)
		}

		result = state.Enqueue(lengthEntry("c", time.Minute), now)
		if result.Position != 2 {
			t.Errorf("expected position 2, got %d", result.Position)
		}
		if result.ETA != 350*time.Second {
			t.Errorf("expected ETA 350s, got %v", result.ETA)
		}
	})

	t.Run("position equals pending length", func(t *testing.T) {
		state := newTestPlayerState()
		state.Enqueue(testEntry("now"), t0)

		for i := 1; i <= 5; i++ {
			result := state.Enqueue(testEntry(TrackID(rune('a'+i))), t0)
			if result.Position != state.PendingLen() {
				t.Fatalf("position %d != pending length %d", result.Position, state.PendingLen())
			}
		}
	})
}

func TestPlayerState_InsertAt(t *testing.T) {
	newState := func() *PlayerState {
		state := newTestPlayerState()
		state.Enqueue(lengthEntry("now", time.Minute), t0)
		state.Enqueue(lengthEntry("a", time.Minute), t0)
		state.Enqueue(lengthEntry("b", 2*time.Minute), t0)
		return state
	}

	tests := []struct {
		name         string
		position     int
		wantPosition int
		wantETA      time.Duration
		wantOrder    []TrackID
	}{
		{
			name:         "position 1",
			position:     1,
			wantPosition: 1,
			wantETA:      time.Minute,
			wantOrder:    []TrackID{"x", "a", "b"},
		},
		{
			name:         "position 0 is head",
			position:     0,
			wantPosition: 1,
			wantETA:      time.Minute,
			wantOrder:    []TrackID{"x", "a", "b"},
		},
		{
			name:         "negative is head",
			position:     -5,
			wantPosition: 1,
			wantETA:      time.Minute,
			wantOrder:    []TrackID{"x", "a", "b"},
		},
		{
			name:         "middle",
			position:     2,
			wantPosition: 2,
			wantETA:      2 * time.Minute,
			wantOrder:    []TrackID{"a", "x", "b"},
		},
		{
			name:         "past end appends",
			position:     42,
			wantPosition: 3,
			wantETA:      4 * time.Minute,
			wantOrder:    []TrackID{"a", "b", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newState()

			result := state.InsertAt(testEntry("x"), tt.position, t0)

			if result.Position != tt.wantPosition {
				t.Errorf("position = %d, expected %d", result.Position, tt.wantPosition)
			}
			if result.ETA != tt.wantETA {
				t.Errorf("ETA = %v, expected %v", result.ETA, tt.wantETA)
			}
			if got := pendingIDs(state); !slices.Equal(got, tt.wantOrder) {
				t.Errorf("pending = %v, expected %v", got, tt.wantOrder)
			}
			if currentID(state) != "now" {
				t.Errorf("expected now playing untouched, got %q", currentID(state))
			}
		})
	}

	t.Run("idle behaves as enqueue", func(t *testing.T) {
		state := newTestPlayerState()

		result := state.InsertAt(testEntry("x"), 3, t0)

		if !result.Started {
			t.Error("expected insert into idle player to start playback")
		}
		if currentID(state) != "x" {
			t.Errorf("expected x now playing, got %q", currentID(state))
		}
	})
}

func TestPlayerState_Advance(t *testing.T) {
	tests := []struct {
		name        string
		loopTrack   bool
		loopQueue   bool
		pending     []TrackID
		wantCurrent TrackID
		wantPending []TrackID
	}{
		{
			name:        "no loop pops head",
			pending:     []TrackID{"b", "c"},
			wantCurrent: "b",
			wantPending: []TrackID{"c"},
		},
		{
			name:        "no loop empty queue goes idle",
			wantCurrent: "",
			wantPending: []TrackID{},
		},
		{
			name:        "loop queue recycles finished track",
			loopQueue:   true,
			pending:     []TrackID{"b", "c"},
			wantCurrent: "b",
			wantPending: []TrackID{"c", "a"},
		},
		{
			name:        "loop queue with empty queue goes idle",
			loopQueue:   true,
			wantCurrent: "",
			wantPending: []TrackID{},
		},
		{
			name:        "loop track restarts same track",
			loopTrack:   true,
			pending:     []TrackID{"b"},
			wantCurrent: "a",
			wantPending: []TrackID{"b"},
		},
		{
			name:        "loop track takes precedence over loop queue",
			loopTrack:   true,
			loopQueue:   true,
			pending:     []TrackID{"b"},
			wantCurrent: "a",
			wantPending: []TrackID{"b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newTestPlayerState()
			state.Enqueue(testEntry("a"), t0)
			for _, id := range tt.pending {
				state.Enqueue(testEntry(id), t0)
			}
			if tt.loopTrack {
				state.ToggleLoopTrack()
			}
			if tt.loopQueue {
				state.ToggleLoopQueue()
			}
			state.Pause(t0.Add(time.Minute))

			now := t0.Add(3 * time.Minute)
			next := state.Advance(now)

			if currentID(state) != tt.wantCurrent {
				t.Errorf("current = %q, expected %q", currentID(state), tt.wantCurrent)
			}
			if got := pendingIDs(state); !slices.Equal(got, tt.wantPending) {
				t.Errorf("pending = %v, expected %v", got, tt.wantPending)
			}
			if tt.wantCurrent == "" {
				if next != nil || state.Status() != StatusIdle {
					t.Errorf("expected idle, got %s", state.Status())
				}
				return
			}
			if next == nil || next.Track.ID != tt.wantCurrent {
				t.Errorf("Advance returned %v, expected %q", next, tt.wantCurrent)
			}
			if state.Status() != StatusPlaying {
				t.Errorf("expected playing after advance, got %s", state.Status())
			}
			if state.Elapsed(now) != 0 {
				t.Errorf("expected elapsed reset, got %v", state.Elapsed(now))
			}
		})
	}
}

func TestPlayerState_AdvanceIdle(t *testing.T) {
	state := newTestPlayerState()
	if next := state.Advance(t0); next != nil {
		t.Errorf("expected nil when idle, got %v", next)
	}
}

func TestPlayerState_Skip(t *testing.T) {
	t.Run("idle fails", func(t *testing.T) {
		state := newTestPlayerState()
		if _, _, err := state.Skip(t0); !errors.Is(err, ErrNothingPlaying) {
			t.Errorf("expected ErrNothingPlaying, got %v", err)
		}
	})

	t.Run("ignores both loop flags", func(t *testing.T) {
		state := newTestPlayerState()
		state.Enqueue(testEntry("a"), t0)
		state.Enqueue(testEntry("b"), t0)
		state.ToggleLoopTrack()
		state.ToggleLoopQueue()

		skipped, next, err := state.Skip(t0.Add(time.Second))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if skipped.Track.ID != "a" {
			t.Errorf("expected a skipped, got %q", skipped.Track.ID)
		}
		if next == nil || next.Track.ID != "b" {
			t.Errorf("expected b next, got %v", next)
		}
		if state.PendingLen() != 0 {
			t.Errorf("expected skipped track not recycled, pending = %v", pendingIDs(state))
		}
	})

	t.Run("last track goes idle", func(t *testing.T) {
		state := newTestPlayerState()
		state.Enqueue(testEntry("a"), t0)

		_, next, err := state.Skip(t0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next != nil || !state.IsIdle() {
			t.Error("expected idle after skipping the last track")
		}
	})
}

func TestPlayerState_FailCurrent(t *testing.T) {
	t.Run("ignores loop track", func(t *testing.T) {
		state := newTestPlayerState()
		state.Enqueue(testEntry("a"), t0)
		state.Enqueue(testEntry("b"), t0)
		state.ToggleLoopTrack()

		failed, next, err := state.FailCurrent(t0, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if failed.Track.ID != "a" || failed.Failures != 1 {
			t.Errorf("unexpected failed entry %+v", failed)
		}
		if next == nil || next.Track.ID != "b" {
			t.Errorf("expected b next, got %v", next)
		}
		if state.PendingLen() != 0 {
			t.Errorf("expected failed track dropped, pending = %v", pendingIDs(state))
		}
	})

	t.Run("loop queue recycles until cap", func(t *testing.T) {
		state := newTestPlayerState()
		state.Enqueue(testEntry("broken"), t0)
		state.Enqueue(testEntry("good"), t0)
		state.ToggleLoopQueue()

		for attempt := 1; attempt < 3; attempt++ {
			failed, next, err := state.FailCurrent(t0, 3)
			if err != nil {
				t.Fatalf("attempt %d: unexpected error: %v", attempt, err)
			}
			if failed.Failures != attempt {
				t.Errorf("attempt %d: failures = %d", attempt, failed.Failures)
			}
			if next == nil || next.Track.ID != "good" {
				t.Fatalf("attempt %d: expected good next, got %v", attempt, next)
			}
			if got := pendingIDs(state); !slices.Equal(got, []TrackID{"broken"}) {
				t.Fatalf("attempt %d: pending = %v, expected [broken]", attempt, got)
			}

			// good finishes and broken comes around again.
			if next := state.Advance(t0); next == nil || next.Track.ID != "broken" {
				t.Fatalf("attempt %d: expected broken to be retried, got %v", attempt, next)
			}
		}

		_, next, err := state.FailCurrent(t0, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next == nil || next.Track.ID != "good" {
			t.Errorf("expected good next, got %v", next)
		}
		if got := pendingIDs(state); !slices.Equal(got, []TrackID{}) {
			t.Errorf("expected broken dropped after reaching the failure cap, pending = %v", got)
		}
	})

	t.Run("loop queue with nothing else queued goes idle", func(t *testing.T) {
		state := newTestPlayerState()
		state.Enqueue(testEntry("broken"), t0)
		state.ToggleLoopQueue()

		failed, next, err := state.FailCurrent(t0, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if failed.Failures != 1 {
			t.Errorf("failures = %d, expected 1", failed.Failures)
		}
		if next != nil || !state.IsIdle() {
			t.Errorf("expected idle, got %s", state.Status())
		}
	})

	t.Run("natural finish resets failure count", func(t *testing.T) {
		state := newTestPlayerState()
		state.Enqueue(testEntry("flaky"), t0)
		state.Enqueue(testEntry("other"), t0)
		state.ToggleLoopQueue()

		state.FailCurrent(t0, 3)
		if next := state.Advance(t0); next == nil || next.Track.ID != "flaky" || next.Failures != 1 {
			t.Fatalf("expected flaky retried with one failure, got %+v", next)
		}
		state.Advance(t0)

		pending := state.Pending()
		if len(pending) != 1 || pending[0].Track.ID != "flaky" || pending[0].Failures != 0 {
			t.Errorf("expected flaky recycled with failure count reset, got %+v", pending)
		}
	})

	t.Run("idle fails", func(t *testing.T) {
		state := newTestPlayerState()
		if _, _, err := state.FailCurrent(t0, 3); !errors.Is(err, ErrNothingPlaying) {
			t.Errorf("expected ErrNothingPlaying, got %v", err)
		}
	})
}

func TestPlayerState_RemoveAt(t *testing.T) {
	state := newTestPlayerState()
	state.Enqueue(testEntry("now"), t0)
	state.Enqueue(testEntry("a"), t0)
	state.Enqueue(testEntry("b"), t0)

	for _, position := range []int{0, -1, 3} {
		if _, err := state.RemoveAt(position); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("RemoveAt(%d): expected ErrInvalidPosition, got %v", position, err)
		}
	}
	if got := pendingIDs(state); !slices.Equal(got, []TrackID{"a", "b"}) {
		t.Fatalf("expected queue unchanged, got %v", got)
	}

	removed, err := state.RemoveAt(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed.Track.ID != "b" {
		t.Errorf("expected b removed, got %q", removed.Track.ID)
	}

	empty := newTestPlayerState()
	if _, err := empty.RemoveAt(1); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("expected ErrInvalidPosition on empty queue, got %v", err)
	}
}

func TestPlayerState_ClearQueue(t *testing.T) {
	state := newTestPlayerState()
	state.Enqueue(testEntry("now"), t0)

	if _, err := state.ClearQueue(); !errors.Is(err, ErrAlreadyEmpty) {
		t.Errorf("expected ErrAlreadyEmpty, got %v", err)
	}

	state.Enqueue(testEntry("a"), t0)
	state.Enqueue(testEntry("b"), t0)

	count, err := state.ClearQueue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 cleared, got %d", count)
	}
	if currentID(state) != "now" {
		t.Error("expected now playing untouched")
	}
}

func TestPlayerState_Shuffle(t *testing.T) {
	state := newTestPlayerState()
	state.Enqueue(testEntry("now"), t0)

	if err := state.Shuffle(); !errors.Is(err, ErrEmptyQueue) {
		t.Errorf("expected ErrEmptyQueue, got %v", err)
	}

	state.Enqueue(testEntry("a"), t0)
	state.Enqueue(testEntry("b"), t0)
	state.Enqueue(testEntry("c"), t0)

	if err := state.Shuffle(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := pendingIDs(state)
	slices.Sort(got)
	if !slices.Equal(got, []TrackID{"a", "b", "c"}) {
		t.Errorf("unexpected entries after shuffle: %v", got)
	}
	if currentID(state) != "now" {
		t.Error("expected now playing untouched")
	}
}

func TestPlayerState_Stop(t *testing.T) {
	state := newTestPlayerState()
	if err := state.Stop(); !errors.Is(err, ErrNothingPlaying) {
		t.Errorf("expected ErrNothingPlaying, got %v", err)
	}

	state.Enqueue(testEntry("a"), t0)
	state.Enqueue(testEntry("b"), t0)

	if err := state.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.IsIdle() || state.PendingLen() != 0 {
		t.Error("expected idle with empty queue after stop")
	}
}

func TestPlayerState_PauseResume(t *testing.T) {
	state := newTestPlayerState()

	if err := state.Pause(t0); !errors.Is(err, ErrNothingPlaying) {
		t.Errorf("expected ErrNothingPlaying, got %v", err)
	}
	if err := state.Resume(t0); !errors.Is(err, ErrNothingPlaying) {
		t.Errorf("expected ErrNothingPlaying, got %v", err)
	}

	state.Enqueue(lengthEntry("a", 100*time.Second), t0)

	if err := state.Resume(t0); !errors.Is(err, ErrNotPaused) {
		t.Errorf("expected ErrNotPaused, got %v", err)
	}

	pauseAt := t0.Add(40 * time.Second)
	if err := state.Pause(pauseAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Status() != StatusPaused {
		t.Errorf("expected paused, got %s", state.Status())
	}
	if err := state.Pause(pauseAt); !errors.Is(err, ErrAlreadyPaused) {
		t.Errorf("expected ErrAlreadyPaused, got %v", err)
	}

	// Wall clock moves on while paused.
	resumeAt := pauseAt.Add(10 * time.Second)
	if got := state.Elapsed(resumeAt); got != 40*time.Second {
		t.Errorf("elapsed while paused = %v, expected 40s", got)
	}

	if err := state.Resume(resumeAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.IsPaused() {
		t.Error("expected not paused after resume")
	}
	if got := state.Elapsed(resumeAt); got != 40*time.Second {
		t.Errorf("elapsed after resume = %v, expected 40s", got)
	}
	if got := state.Elapsed(resumeAt.Add(5 * time.Second)); got != 45*time.Second {
		t.Errorf("elapsed 5s after resume = %v, expected 45s", got)
	}
}

func TestPlayerState_Seek(t *testing.T) {
	t.Run("beyond duration fails", func(t *testing.T) {
		state := newTestPlayerState()
		state.Enqueue(lengthEntry("a", 100*time.Second), t0)
		now := t0.Add(20 * time.Second)

		if err := state.Seek(150*time.Second, now); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("expected ErrOutOfRange, got %v", err)
		}
		if got := state.Elapsed(now); got != 20*time.Second {
			t.Errorf("expected state unchanged, elapsed = %v", got)
		}
	})

	t.Run("sets elapsed", func(t *testing.T) {
		state := newTestPlayerState()
		state.Enqueue(lengthEntry("a", 100*time.Second), t0)
		now := t0.Add(20 * time.Second)

		if err := state.Seek(75*time.Second, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := state.Elapsed(now); got != 75*time.Second {
			t.Errorf("elapsed = %v, expected 75s", got)
		}
	})

	t.Run("paused stays paused", func(t *testing.T) {
		state := newTestPlayerState()
		state.Enqueue(lengthEntry("a", 100*time.Second), t0)
		state.Pause(t0.Add(10 * time.Second))

		now := t0.Add(30 * time.Second)
		if err := state.Seek(60*time.Second, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !state.IsPaused() {
			t.Error("expected still paused")
		}
		if got := state.Elapsed(now.Add(time.Minute)); got != 60*time.Second {
			t.Errorf("elapsed = %v, expected 60s", got)
		}

		state.Resume(now.Add(time.Minute))
		if got := state.Elapsed(now.Add(time.Minute + 5*time.Second)); got != 65*time.Second {
			t.Errorf("elapsed after resume = %v, expected 65s", got)
		}
	})

	t.Run("idle and stream fail", func(t *testing.T) {
		state := newTestPlayerState()
		if err := state.Seek(0, t0); !errors.Is(err, ErrNothingPlaying) {
			t.Errorf("expected ErrNothingPlaying, got %v", err)
		}

		state.Enqueue(QueueEntry{Track: Track{ID: "live", IsStream: true}}, t0)
		if err := state.Seek(0, t0); !errors.Is(err, ErrNotSeekable) {
			t.Errorf("expected ErrNotSeekable, got %v", err)
		}
	})
}

func TestPlayerState_ToggleLoops(t *testing.T) {
	state := newTestPlayerState()

	if _, err := state.ToggleLoopTrack(); !errors.Is(err, ErrNothingPlaying) {
		t.Errorf("expected ErrNothingPlaying, got %v", err)
	}
	if _, err := state.ToggleLoopQueue(); !errors.Is(err, ErrNothingPlaying) {
		t.Errorf("expected ErrNothingPlaying, got %v", err)
	}

	state.Enqueue(testEntry("a"), t0)

	if on, _ := state.ToggleLoopTrack(); !on || !state.LoopTrack() {
		t.Error("expected loop track on")
	}
	if on, _ := state.ToggleLoopQueue(); !on || !state.LoopQueue() {
		t.Error("expected loop queue on")
	}
	if on, _ := state.ToggleLoopTrack(); on || state.LoopTrack() {
		t.Error("expected loop track off")
	}
	if !state.LoopQueue() {
		t.Error("expected loop flags to be independent")
	}
}

func TestPlayerState_Remaining(t *testing.T) {
	state := newTestPlayerState()
	if state.Remaining(t0) != 0 || state.Elapsed(t0) != 0 {
		t.Error("expected zero accounting when idle")
	}

	state.Enqueue(lengthEntry("a", time.Minute), t0)
	state.Enqueue(lengthEntry("b", 2*time.Minute), t0)
	state.Enqueue(lengthEntry("c", 3*time.Minute), t0)

	now := t0.Add(20 * time.Second)
	if got := state.Remaining(now); got != 40*time.Second {
		t.Errorf("Remaining = %v, expected 40s", got)
	}
	if got := state.TotalRemaining(now); got != 5*time.Minute+40*time.Second {
		t.Errorf("TotalRemaining = %v, expected 5m40s", got)
	}
	if got := state.ETA(2, now); got != 2*time.Minute+40*time.Second {
		t.Errorf("ETA(2) = %v, expected 2m40s", got)
	}

	// Overran the reported length: never negative.
	late := t0.Add(5 * time.Minute)
	if got := state.Remaining(late); got != 0 {
		t.Errorf("Remaining after overrun = %v, expected 0", got)
	}
	if got := state.Elapsed(late); got != time.Minute {
		t.Errorf("Elapsed after overrun = %v, expected clamp to 1m", got)
	}
}

func TestPlayerState_PlaybackSeq(t *testing.T) {
	state := newTestPlayerState()
	state.Enqueue(testEntry("a"), t0)
	first := state.PlaybackSeq()

	state.ToggleLoopTrack()
	state.Advance(t0.Add(3 * time.Minute))

	if state.PlaybackSeq() == first {
		t.Error("expected restart of the same track to change the playback sequence")
	}
}
