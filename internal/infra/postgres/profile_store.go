package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"web3-quiz-service/internal/domain"
)

// Table names are shared with the grading backend and must match exactly.
const (
	usersTable   = `"Web3_Quiz_User_Data"`
	rewardsTable = `"Web3_Quiz_Rewards"`
	historyTable = `"Web3_Quiz_History"`
)

// ProfileStore reads and writes the profile, reward and history collections.
type ProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

func (s *ProfileStore) CreateUser(ctx context.Context, p domain.UserProfile) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+usersTable+` ("User_ID", "Name", "Email") VALUES ($1, $2, $3)
		 ON CONFLICT ("User_ID") DO UPDATE SET "Name" = EXCLUDED."Name", "Email" = EXCLUDED."Email"`,
		p.UserID, p.Name, p.Email)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *ProfileStore) GetUser(ctx context.Context, userID string) (domain.UserProfile, bool, error) {
	var p domain.UserProfile
	err := s.pool.QueryRow(ctx,
		`SELECT "User_ID", "Name", "Email" FROM `+usersTable+` WHERE "User_ID" = $1`, userID).
		Scan(&p.UserID, &p.Name, &p.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, false, nil
	}
	if err != nil {
		return domain.UserProfile{}, false, fmt.Errorf("load user: %w", err)
	}
	return p, true, nil
}

func (s *ProfileStore) ListHistory(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, created_at, "User_ID", "Quiz_Attempt_ID", "Total_Passed", "Total_Failed",
		        "Failed_Questions_Text", "Failed_Question_ID", "Quiz_Category", "Total_Question"
		 FROM `+historyTable+` WHERE "User_ID" = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := []domain.HistoryEntry{}
	for rows.Next() {
		var h domain.HistoryEntry
		if err := rows.Scan(&h.ID, &h.CreatedAt, &h.UserID, &h.QuizAttemptID, &h.TotalPassed, &h.TotalFailed,
			&h.FailedQuestionsText, &h.FailedQuestionID, &h.Category, &h.TotalQuestions); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

const rewardColumns = `id, created_at, "User_ID", "User_Wallet_Address", "Reward_Amount"::text,
	"Quiz_Attempt_ID", "Raw_Claim_ID", "Signature", "Status"`

func (s *ProfileStore) ListRewards(ctx context.Context, userID string) ([]domain.Reward, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+rewardColumns+` FROM `+rewardsTable+` WHERE "User_ID" = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query rewards: %w", err)
	}
	defer rows.Close()

	out := []domain.Reward{}
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ProfileStore) GetReward(ctx context.Context, userID string, rewardID int64) (domain.Reward, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+rewardColumns+` FROM `+rewardsTable+` WHERE id = $1 AND "User_ID" = $2`, rewardID, userID)
	r, err := scanReward(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Reward{}, domain.ErrRewardNotFound
	}
	return r, err
}

func scanReward(row pgx.Row) (domain.Reward, error) {
	var r domain.Reward
	err := row.Scan(&r.ID, &r.CreatedAt, &r.UserID, &r.WalletAddress, &r.Amount,
		&r.QuizAttemptID, &r.RawClaimID, &r.Signature, &r.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Reward{}, err
	}
	if err != nil {
		return domain.Reward{}, fmt.Errorf("scan reward: %w", err)
	}
	return r, nil
}
