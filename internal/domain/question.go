package domain

import (
	"bytes"
	"encoding/json"
)

// RawQuestion is a question record as sent by the generator. Both the
// canonical camelCase and the capitalized field names are accepted.
type RawQuestion struct {
	Question         *string         `json:"question"`
	QuestionCap      *string         `json:"Question"`
	Options          []string        `json:"options"`
	OptionsCap       []string        `json:"Options"`
	CorrectAnswer    *string         `json:"correctAnswer"`
	CorrectAnswerCap *string         `json:"CorrectAnswer"`
	QuestionID       json.RawMessage `json:"questionId"`
	QuestionIDCap    json.RawMessage `json:"QuestionId"`
}

// NormalizeQuestion maps a raw record onto the canonical Question shape.
// Canonical names win when both conventions are present.
func NormalizeQuestion(raw RawQuestion) Question {
	q := Question{
		Prompt:        firstString(raw.Question, raw.QuestionCap),
		CorrectAnswer: firstString(raw.CorrectAnswer, raw.CorrectAnswerCap),
	}
	q.ID, q.IDRaw = firstID(raw.QuestionID, raw.QuestionIDCap)
	if raw.Options != nil {
		q.Options = raw.Options
	} else {
		q.Options = raw.OptionsCap
	}
	if q.Options == nil {
		q.Options = []string{}
	}
	return q
}

// NormalizeQuestions normalizes a whole generator response in order.
func NormalizeQuestions(raw []RawQuestion) []Question {
	out := make([]Question, 0, len(raw))
	for _, r := range raw {
		out = append(out, NormalizeQuestion(r))
	}
	return out
}

func firstString(values ...*string) string {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return ""
}

// firstID returns the id as display text (strings unquoted, numbers as their
// literal) together with a copy of the literal itself.
func firstID(values ...json.RawMessage) (string, json.RawMessage) {
	for _, v := range values {
		v = bytes.TrimSpace(v)
		if len(v) == 0 || bytes.Equal(v, []byte("null")) {
			continue
		}
		lit := append(json.RawMessage(nil), v...)
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s, lit
		}
		return string(v), lit
	}
	return "", nil
}
