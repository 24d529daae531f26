package memory

import (
	"context"
	"sync"
	"time"

	"web3-quiz-service/internal/domain"
)

// IdentityStore keeps resolved identities in process memory with a TTL.
type IdentityStore struct {
	clock func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedIdentity
}

type cachedIdentity struct {
	identity  domain.Identity
	expiresAt time.Time
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		clock:   time.Now,
		entries: make(map[string]cachedIdentity),
	}
}

func (s *IdentityStore) Load(_ context.Context, key string) (domain.Identity, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return domain.Identity{}, false, nil
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(s.clock()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return domain.Identity{}, false, nil
	}
	return entry.identity, true, nil
}

// Save stores id under key; a non-positive ttl never expires.
func (s *IdentityStore) Save(_ context.Context, key string, id domain.Identity, ttl time.Duration) error {
	entry := cachedIdentity{identity: id}
	if ttl > 0 {
		entry.expiresAt = s.clock().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *IdentityStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}
