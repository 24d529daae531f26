package domain

import (
	"encoding/json"
	"time"
)

// Question is the canonical shape of a generated quiz question.
type Question struct {
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	// ID is the upstream question id; empty when the generator sent none.
	ID string `json:"questionId,omitempty"`
	// IDRaw is the id exactly as the generator encoded it, so a string "42"
	// and a number 42 stay distinct when echoed back to the grader.
	IDRaw json.RawMessage `json:"-"`
}

// SessionParams is a validated set of quiz settings.
type SessionParams struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
	TimeLimit  int    `json:"time"` // seconds, 0 disables the countdown
}

// Identity is the authenticated user as reported by the identity provider.
type Identity struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Player identifies who a quiz attempt is graded for.
type Player struct {
	UserID     string
	UserWallet string
}

// AnswerEntry is one graded answer in a submission.
type AnswerEntry struct {
	QuestionID      any  `json:"questionId"`
	UserAnswerIndex *int `json:"userAnswerIndex"`
}

// SubmissionPayload is the body sent to the grading webhook.
type SubmissionPayload struct {
	UserID        string        `json:"userId"`
	UserWallet    string        `json:"userWallet"`
	QuizAttemptID string        `json:"quizAttemptId"`
	Answers       []AnswerEntry `json:"answers"`
}

// Category is one entry of the quiz catalogue.
type Category struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	QuestionCount int    `json:"questionCount"`
}

// UserProfile mirrors a row of the user profile collection.
type UserProfile struct {
	UserID string `json:"User_ID"`
	Name   string `json:"Name"`
	Email  string `json:"Email"`
}

// Reward statuses as written by the grading backend.
const (
	RewardUnclaimed = "Unclaimed"
	RewardClaimed   = "Claimed"
)

// Reward mirrors a row of the reward ledger.
type Reward struct {
	ID            int64     `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UserID        string    `json:"User_ID"`
	WalletAddress string    `json:"User_Wallet_Address"`
	Amount        string    `json:"Reward_Amount"`
	QuizAttemptID *string   `json:"Quiz_Attempt_ID"`
	RawClaimID    *string   `json:"Raw_Claim_ID"`
	Signature     *string   `json:"Signature"`
	Status        string    `json:"Status"`
}

// HistoryEntry mirrors a row of the quiz-attempt history.
type HistoryEntry struct {
	ID                  int64     `json:"id"`
	CreatedAt           time.Time `json:"created_at"`
	UserID              string    `json:"User_ID"`
	QuizAttemptID       string    `json:"Quiz_Attempt_ID"`
	TotalPassed         int       `json:"Total_Passed"`
	TotalFailed         int       `json:"Total_Failed"`
	FailedQuestionsText *string   `json:"Failed_Questions_Text"`
	FailedQuestionID    *string   `json:"Failed_Question_ID"`
	Category            string    `json:"Quiz_Category"`
	TotalQuestions      int       `json:"Total_Question"`
}
