package infrastructure

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestVoiceHandshake_WaitsForBothEvents(t *testing.T) {
	tests := []struct {
		name       string
		stateFirst bool
	}{
		{name: "state then server", stateFirst: true},
		{name: "server then state", stateFirst: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &voiceHandshake{}
			ready := h.expectJoin()
			channelID := snowflake.ID(42)

			first := func() (voiceCredentials, bool) { return h.updateState(&channelID, "session") }
			second := func() (voiceCredentials, bool) { return h.updateServer("token", "endpoint") }
			if !tt.stateFirst {
				first, second = second, first
			}

			if _, ok := first(); ok {
				t.Error("expected no forward after a single event")
			}
			if isClosed(ready) {
				t.Error("expected join to be pending after a single event")
			}

			creds, ok := second()
			if !ok {
				t.Fatal("expected forward after both events")
			}
			if !isClosed(ready) {
				t.Error("expected join to be ready")
			}
			if creds.channelID == nil || *creds.channelID != channelID ||
				creds.sessionID != "session" || creds.token != "token" || creds.endpoint != "endpoint" {
				t.Errorf("unexpected credentials %+v", creds)
			}
		})
	}
}

func TestVoiceHandshake_ForwardsLaterUpdates(t *testing.T) {
	h := &voiceHandshake{}
	channelID := snowflake.ID(42)
	h.updateState(&channelID, "session")
	h.updateServer("token", "endpoint")

	creds, ok := h.updateServer("token-2", "endpoint-2")
	if !ok {
		t.Fatal("expected an endpoint change to be forwarded")
	}
	if creds.sessionID != "session" || creds.endpoint != "endpoint-2" {
		t.Errorf("unexpected credentials %+v", creds)
	}
}

func TestVoiceHandshake_JoinNeedsFreshEvents(t *testing.T) {
	h := &voiceHandshake{}
	channelID := snowflake.ID(42)
	h.updateState(&channelID, "session")
	h.updateServer("token", "endpoint")

	// Moving channels: events seen before the join do not count.
	ready := h.expectJoin()
	if isClosed(ready) {
		t.Fatal("expected join to wait for fresh events")
	}

	other := snowflake.ID(43)
	h.updateState(&other, "session")
	if isClosed(ready) {
		t.Error("expected join to wait for the server update")
	}
	h.updateServer("token", "endpoint")
	if !isClosed(ready) {
		t.Error("expected join to be ready")
	}
}

func TestVoiceHandshake_CancelJoin(t *testing.T) {
	h := &voiceHandshake{}
	stale := h.expectJoin()
	current := h.expectJoin()

	h.cancelJoin(stale)
	channelID := snowflake.ID(42)
	h.updateState(&channelID, "session")
	h.updateServer("token", "endpoint")
	if !isClosed(current) {
		t.Error("expected cancelling a replaced waiter to leave the current one armed")
	}

	next := h.expectJoin()
	h.cancelJoin(next)
	h.updateState(&channelID, "session")
	h.updateServer("token", "endpoint")
	if isClosed(next) {
		t.Error("expected a cancelled waiter never to fire")
	}
}
