package memory

import (
	"context"
	"sort"
	"sync"

	"web3-quiz-service/internal/domain"
)

// ProfileStore is an in-memory app.ProfileRepository for demos and tests.
type ProfileStore struct {
	mu      sync.RWMutex
	users   map[string]domain.UserProfile
	history []domain.HistoryEntry
	rewards []domain.Reward
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{users: make(map[string]domain.UserProfile)}
}

func (s *ProfileStore) CreateUser(_ context.Context, p domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[p.UserID] = p
	return nil
}

func (s *ProfileStore) GetUser(_ context.Context, userID string) (domain.UserProfile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.users[userID]
	return p, ok, nil
}

// AddHistory appends an attempt, as the grading backend would.
func (s *ProfileStore) AddHistory(h domain.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == 0 {
		h.ID = int64(len(s.history) + 1)
	}
	s.history = append(s.history, h)
}

// AddReward appends a reward ledger row, as the grading backend would.
func (s *ProfileStore) AddReward(r domain.Reward) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = int64(len(s.rewards) + 1)
	}
	s.rewards = append(s.rewards, r)
}

func (s *ProfileStore) ListHistory(_ context.Context, userID string) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.HistoryEntry{}
	for _, h := range s.history {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ProfileStore) ListRewards(_ context.Context, userID string) ([]domain.Reward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Reward{}
	for _, r := range s.rewards {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ProfileStore) GetReward(_ context.Context, userID string, rewardID int64) (domain.Reward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rewards {
		if r.ID == rewardID && r.UserID == userID {
			return r, nil
		}
	}
	return domain.Reward{}, domain.ErrRewardNotFound
}
