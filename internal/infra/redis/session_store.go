package redis

import (
	"context"
	"strconv"
	"sync"
	"time"

	"trivia-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionStore.
// Sessions themselves stay in process memory (the state machine mutates
// them under their own locks); Redis only marks session liveness so other
// instances and operators can see which game ids are active. A full
// multi-instance deployment would pair this with a snapshot projector.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[int64]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[int64]*app.Session),
	}
}

func (s *SessionStore) Save(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), "1", s.ttl).Err()
}

func (s *SessionStore) Get(id int64) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

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

func (s *SessionStore) key(id int64) string {
	return "game:session:" + strconv.FormatInt(id, 10)
}
