package discord

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/time/rate"
)

// throttleIdle is how long a user's limiter survives without requests.
const throttleIdle = 10 * time.Minute

// SearchThrottle rate limits track lookups per user. It is shared by
// /search and query autocomplete.
type SearchThrottle struct {
	mu        sync.Mutex
	limiters  map[snowflake.ID]*throttleEntry
	limit     rate.Limit
	burst     int
	lastPrune time.Time
	now       func() time.Time
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewSearchThrottle creates a SearchThrottle that refills perSecond lookups
// per user, up to burst.
func NewSearchThrottle(perSecond float64, burst int) *SearchThrottle {
	return &SearchThrottle{
		limiters: make(map[snowflake.ID]*throttleEntry),
		limit:    rate.Limit(perSecond),
		burst:    max(burst, 1),
		now:      time.Now,
	}
}

// Allow reports whether the user may run another lookup now.
func (t *SearchThrottle) Allow(userID snowflake.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.prune(now)

	entry, ok := t.limiters[userID]
	if !ok {
		entry = &throttleEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.limiters[userID] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// prune drops limiters of users idle for longer than throttleIdle.
func (t *SearchThrottle) prune(now time.Time) {
	if now.Sub(t.lastPrune) < throttleIdle {
		return
	}
	t.lastPrune = now

	for id, entry := range t.limiters {
		if now.Sub(entry.lastSeen) > throttleIdle {
			delete(t.limiters, id)
		}
	}
}

func (t *SearchThrottle) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.limiters)
}
