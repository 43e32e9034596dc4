package memory

import (
	"sync"

	"trivia-service/internal/app"
)

// SessionStore is the in-memory implementation of app.SessionStore. The
// store mutex only guards the map; each session carries its own lock.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*app.Session),
	}
}

func (s *SessionStore) Save(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
}

func (s *SessionStore) Get(id int64) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// NextID returns max(existing ids)+1, or 0 for an empty store. Ids are
// only reused once every session with a smaller id is gone.
func (s *SessionStore) NextID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max int64 = -1
	for id := range s.sessions {
		if id > max {
			max = id
		}
	}
	return max + 1
}
