package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// voiceCredentials is what Lavalink needs to open a guild's voice connection.
type voiceCredentials struct {
	channelID *snowflake.ID
	sessionID string
	token     string
	endpoint  string
}

// voiceHandshake collects the VoiceStateUpdate and VoiceServerUpdate that
// Discord sends for a guild. They arrive in either order, and Lavalink rejects
// a partial voice state, so nothing is forwarded until both have been seen.
// After that every update is forwarded with the latest values of both.
type voiceHandshake struct {
	mu        sync.Mutex
	creds     voiceCredentials
	hasState  bool
	hasServer bool
	join      *joinWaiter
}

// joinWaiter is armed by a join request and fires once a fresh pair of
// events has arrived.
type joinWaiter struct {
	gotState  bool
	gotServer bool
	ready     chan struct{}
}

// expectJoin arms a new waiter and returns a channel that is closed once
// both events have arrived after this call.
func (h *voiceHandshake) expectJoin() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.join = &joinWaiter{ready: make(chan struct{})}
	return h.join.ready
}

// cancelJoin disarms the waiter if it is still the one returned for ready.
func (h *voiceHandshake) cancelJoin(ready <-chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.join != nil && (<-chan struct{})(h.join.ready) == ready {
		h.join = nil
	}
}

// updateState records a VoiceStateUpdate. It reports whether the credentials
// are complete and should be forwarded.
func (h *voiceHandshake) updateState(
	channelID *snowflake.ID,
	sessionID string,
) (voiceCredentials, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.creds.channelID = channelID
	h.creds.sessionID = sessionID
	h.hasState = true
	if h.join != nil {
		h.join.gotState = true
	}
	return h.settle()
}

// updateServer records a VoiceServerUpdate. It reports whether the
// credentials are complete and should be forwarded.
func (h *voiceHandshake) updateServer(token, endpoint string) (voiceCredentials, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.creds.token = token
	h.creds.endpoint = endpoint
	h.hasServer = true
	if h.join != nil {
		h.join.gotServer = true
	}
	return h.settle()
}

// settle must be called with mu held.
func (h *voiceHandshake) settle() (voiceCredentials, bool) {
	if h.join != nil && h.join.gotState && h.join.gotServer {
		close(h.join.ready)
		h.join = nil
	}
	return h.creds, h.hasState && h.hasServer
}
