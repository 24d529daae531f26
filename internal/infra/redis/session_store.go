package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"web3-quiz-service/internal/app"
	"web3-quiz-service/internal/domain"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Controllers own timers and live connections, so they stay in a local map;
// Redis only carries a liveness marker per session so other instances and
// operators can see which attempts are running.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Controller
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Controller),
	}
}

func (s *SessionStore) Add(c *app.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[c.ID()] = c
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(c.ID()), "1", s.markerTTL(c.Params())).Err()
}

// Get also pushes the marker's expiry forward while the session is in use.
func (s *SessionStore) Get(sessionID string) (*app.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.sessions[sessionID]
	if ok {
		_ = s.client.Expire(context.Background(), s.key(sessionID), s.markerTTL(c.Params())).Err()
	}
	return c, ok
}

func (s *SessionStore) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return
	}
	delete(s.sessions, sessionID)
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

// markerTTL covers a full timed run of the quiz plus the configured slack, so
// an untouched session keeps its marker until every countdown has run out.
func (s *SessionStore) markerTTL(p domain.SessionParams) time.Duration {
	perQuestion := time.Duration(p.TimeLimit)*time.Second + app.DefaultAdvanceDelay
	return time.Duration(p.Count)*perQuestion + s.ttl
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
