package discord

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// sessionStore keeps the state behind interactive messages (search menus,
// queue pages) until they are closed or expire.
type sessionStore[T any] struct {
	mu       sync.Mutex
	sessions map[string]*session[T]
	ttl      time.Duration
}

type session[T any] struct {
	ownerID snowflake.ID
	data    T
	timer   *time.Timer
}

func newSessionStore[T any](ttl time.Duration) *sessionStore[T] {
	return &sessionStore[T]{
		sessions: make(map[string]*session[T]),
		ttl:      ttl,
	}
}

// open registers a session owned by ownerID and returns its ID. onExpire runs
// once if the session is neither closed nor touched within the TTL.
func (s *sessionStore[T]) open(ownerID snowflake.ID, data T, onExpire func()) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &session[T]{ownerID: ownerID, data: data}
	sess.timer = time.AfterFunc(s.ttl, func() {
		if s.remove(id) && onExpire != nil {
			onExpire()
		}
	})
	s.sessions[id] = sess

	return id
}

// get returns the owner and data of a live session.
func (s *sessionStore[T]) get(id string) (snowflake.ID, T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		var zero T
		return 0, zero, false
	}
	return sess.ownerID, sess.data, true
}

// update replaces the session data and restarts its expiry.
func (s *sessionStore[T]) update(id string, data T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.data = data
	sess.timer.Reset(s.ttl)
	return true
}

// close removes the session without running its expiry callback.
func (s *sessionStore[T]) close(id string) bool {
	return s.remove(id)
}

// closeAll drops every session, e.g. on shutdown.
func (s *sessionStore[T]) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		sess.timer.Stop()
		delete(s.sessions, id)
	}
}

func (s *sessionStore[T]) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.timer.Stop()
	delete(s.sessions, id)
	return true
}

func (s *sessionStore[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
