package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"web3-quiz-service/internal/domain"
)

// IdentityStore shares resolved identities across instances.
// Entries are stored as: SET identity:{tokenDigest} {json} EX ttl
type IdentityStore struct {
	client *redis.Client
}

func NewIdentityStore(client *redis.Client) *IdentityStore {
	return &IdentityStore{client: client}
}

func (s *IdentityStore) Load(ctx context.Context, key string) (domain.Identity, bool, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Identity{}, false, nil
	}
	if err != nil {
		return domain.Identity{}, false, fmt.Errorf("load identity: %w", err)
	}
	var id domain.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return domain.Identity{}, false, fmt.Errorf("unmarshal identity: %w", err)
	}
	return id, true, nil
}

func (s *IdentityStore) Save(ctx context.Context, key string, id domain.Identity, ttl time.Duration) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.key(key), raw, ttl).Err()
}

func (s *IdentityStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *IdentityStore) key(digest string) string {
	return "identity:" + digest
}
