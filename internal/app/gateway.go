package app

import (
	"context"
	"encoding/json"

	"web3-quiz-service/internal/domain"
)

// Submission is a completed session handed to the grading gateway.
type Submission struct {
	Player    domain.Player
	Questions []domain.Question
	Answers   []*int
}

// Gateway grades a completed session. Implementations make exactly one
// outbound call per Submit.
type Gateway interface {
	Submit(ctx context.Context, sub Submission) (domain.SubmissionResult, error)
}

// QuestionProvider generates the questions for a session.
type QuestionProvider interface {
	FetchQuestions(ctx context.Context, category, difficulty string, count int) ([]domain.Question, error)
}

// Payload builds the webhook body for attemptID. Question ids are echoed as
// received; questions without one are referenced by their 1-based position.
func (s Submission) Payload(attemptID string) domain.SubmissionPayload {
	answers := make([]domain.AnswerEntry, len(s.Answers))
	for i, a := range s.Answers {
		var q domain.Question
		if i < len(s.Questions) {
			q = s.Questions[i]
		}
		answers[i] = domain.AnswerEntry{
			QuestionID:      questionRef(q, i),
			UserAnswerIndex: a,
		}
	}
	return domain.SubmissionPayload{
		UserID:        s.Player.UserID,
		UserWallet:    s.Player.UserWallet,
		QuizAttemptID: attemptID,
		Answers:       answers,
	}
}

// questionRef echoes the generator's id literal unchanged. Ids set without a
// literal are sent as strings.
func questionRef(q domain.Question, idx int) any {
	switch {
	case len(q.IDRaw) > 0 && json.Valid(q.IDRaw):
		return q.IDRaw
	case q.ID != "":
		return q.ID
	default:
		return idx + 1
	}
}
