package app

import (
	"context"
	"fmt"
	"math"

	"web3-quiz-service/internal/domain"
)

// ProfileRepository is the data store for the user profile, reward ledger and
// quiz-attempt history collections.
type ProfileRepository interface {
	CreateUser(ctx context.Context, p domain.UserProfile) error
	GetUser(ctx context.Context, userID string) (domain.UserProfile, bool, error)
	ListHistory(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
	ListRewards(ctx context.Context, userID string) ([]domain.Reward, error)
	GetReward(ctx context.Context, userID string, rewardID int64) (domain.Reward, error)
}

// ClaimRequest carries the arguments of the on-chain claimReward entry point.
type ClaimRequest struct {
	UserID     string
	Recipient  string
	Amount     string
	RawClaimID string
	Signature  string
}

// RewardClaimer submits a reward claim on chain.
type RewardClaimer interface {
	ClaimReward(ctx context.Context, req ClaimRequest) error
}

// HistoryView is a history row with its score as a percentage.
type HistoryView struct {
	domain.HistoryEntry
	Percentage int `json:"percentage"`
}

// ProfileView is everything the profile screen shows.
type ProfileView struct {
	Identity domain.Identity     `json:"identity"`
	User     *domain.UserProfile `json:"user"`
	History  []HistoryView       `json:"history"`
	Rewards  []domain.Reward     `json:"rewards"`
}

type ProfileService struct {
	repo    ProfileRepository
	claimer RewardClaimer
}

func NewProfileService(repo ProfileRepository, claimer RewardClaimer) *ProfileService {
	return &ProfileService{repo: repo, claimer: claimer}
}

// Profile loads the profile row, quiz history and unclaimed rewards for id.
func (p *ProfileService) Profile(ctx context.Context, id domain.Identity) (ProfileView, error) {
	view := ProfileView{Identity: id, History: []HistoryView{}, Rewards: []domain.Reward{}}

	user, ok, err := p.repo.GetUser(ctx, id.ID)
	if err != nil {
		return ProfileView{}, fmt.Errorf("load profile: %w", err)
	}
	if ok {
		view.User = &user
	}

	history, err := p.repo.ListHistory(ctx, id.ID)
	if err != nil {
		return ProfileView{}, fmt.Errorf("load history: %w", err)
	}
	for _, h := range history {
		view.History = append(view.History, HistoryView{HistoryEntry: h, Percentage: historyPercentage(h)})
	}

	rewards, err := p.repo.ListRewards(ctx, id.ID)
	if err != nil {
		return ProfileView{}, fmt.Errorf("load rewards: %w", err)
	}
	for _, r := range rewards {
		if r.Status == domain.RewardUnclaimed {
			view.Rewards = append(view.Rewards, r)
		}
	}
	return view, nil
}

// ClaimReward hands an unclaimed reward to the on-chain claimer.
func (p *ProfileService) ClaimReward(ctx context.Context, userID string, rewardID int64) error {
	reward, err := p.repo.GetReward(ctx, userID, rewardID)
	if err != nil {
		return err
	}
	if reward.Status != domain.RewardUnclaimed {
		return fmt.Errorf("%w: reward %d is %s", domain.ErrInvalidClaim, rewardID, reward.Status)
	}
	return p.claimer.ClaimReward(ctx, ClaimRequest{
		UserID:     userID,
		Recipient:  reward.WalletAddress,
		Amount:     reward.Amount,
		RawClaimID: deref(reward.RawClaimID),
		Signature:  deref(reward.Signature),
	})
}

func historyPercentage(h domain.HistoryEntry) int {
	if h.TotalQuestions <= 0 {
		return 0
	}
	return int(math.Round(float64(h.TotalPassed) / float64(h.TotalQuestions) * 100))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
