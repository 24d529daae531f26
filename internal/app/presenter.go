package app

import (
	"math"
	"strconv"

	"web3-quiz-service/internal/domain"
)

// Result messages, bucketed by percentage.
const (
	MessageOutstanding = "Outstanding! You're a true expert!"
	MessageGreat       = "Great job! You know your stuff!"
	MessageGoodEffort  = "Good effort! Keep learning!"
	MessageKeepGoing   = "Keep practicing! You'll improve with time!"
	MessagePending     = "We'll send your answers to the server for grading."
	MessageEmpty       = "No questions were available for this quiz."
	PendingLabel       = "Results pending..."
)

// ResultView is what the result screen renders for a finished session.
type ResultView struct {
	Total           int                      `json:"total"`
	Score           *float64                 `json:"score,omitempty"`
	Percentage      *int                     `json:"percentage,omitempty"`
	Message         string                   `json:"message"`
	Pending         bool                     `json:"pending"`
	PendingLabel    string                   `json:"pendingLabel,omitempty"`
	Submitting      bool                     `json:"submitting"`
	SubmissionError string                   `json:"submissionError,omitempty"`
	Reward          *domain.RewardClaim      `json:"reward,omitempty"`
	Failed          *domain.FailedBreakdown  `json:"failed,omitempty"`
	Rewards         []domain.RewardClaim     `json:"rewards,omitempty"`
	FailedBlocks    []domain.FailedBreakdown `json:"failedBlocks,omitempty"`
	Raw             string                   `json:"raw,omitempty"`
	Params          domain.SessionParams     `json:"params"`
	TimeLimitLabel  string                   `json:"timeLimitLabel"`
}

// Present builds the result screen from a session snapshot. Result shapes it
// does not recognize contribute nothing.
func Present(s Snapshot) ResultView {
	view := ResultView{
		Total:           s.Total,
		Submitting:      s.Submitting,
		SubmissionError: s.SubmissionError,
		Params:          s.Params,
		TimeLimitLabel:  timeLimitLabel(s.Params.TimeLimit),
	}

	if res := s.Result; res != nil {
		if res.Score != nil {
			score := *res.Score
			view.Score = &score
			view.Percentage = Percentage(score, s.Total)
		}
		view.Reward = res.Reward
		view.Failed = res.Failed
		view.Rewards = res.Rewards
		view.FailedBlocks = res.FailedBlocks
		if res.Kind == domain.ResultRawText {
			view.Raw = res.Raw
		}
	}

	switch {
	case s.Empty:
		view.Message = MessageEmpty
	case view.Percentage == nil:
		view.Pending = true
		view.PendingLabel = PendingLabel
		view.Message = MessagePending
	default:
		view.Message = Message(*view.Percentage)
	}
	return view
}

// Percentage is score/total rounded to a whole percent, or nil without questions.
func Percentage(score float64, total int) *int {
	if total <= 0 {
		return nil
	}
	p := int(math.Round(score / float64(total) * 100))
	return &p
}

// Message picks the commentary tier for a percentage.
func Message(pct int) string {
	switch {
	case pct >= 90:
		return MessageOutstanding
	case pct >= 70:
		return MessageGreat
	case pct >= 50:
		return MessageGoodEffort
	default:
		return MessageKeepGoing
	}
}

func timeLimitLabel(seconds int) string {
	if seconds <= 0 {
		return "No limit"
	}
	return strconv.Itoa(seconds) + " seconds"
}
