package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ResultKind tags the shape of a grading webhook response.
type ResultKind string

const (
	ResultScore           ResultKind = "score"
	ResultRewardClaim     ResultKind = "reward_claim"
	ResultFailedBreakdown ResultKind = "failed_breakdown"
	ResultRawText         ResultKind = "raw_text"
	ResultUnknown         ResultKind = "unknown"
)

// RewardClaim is a reward record returned by the grader.
type RewardClaim struct {
	QuizAttemptID string `json:"quizAttemptId"`
	Amount        string `json:"amount"` // wei, kept as text
	RawClaimID    string `json:"rawClaimId"`
	Signature     string `json:"signature"`
	Status        string `json:"status"`
}

// FailedQuestion is one entry of a failed-question breakdown.
type FailedQuestion struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// FailedBreakdown lists the questions a user got wrong.
type FailedBreakdown struct {
	TotalPassed *int             `json:"totalPassed,omitempty"`
	TotalFailed *int             `json:"totalFailed,omitempty"`
	Questions   []FailedQuestion `json:"questions"`
}

// SubmissionResult is the tagged union of everything the grader may answer.
// Kind names the primary block; Raw always carries the body text. Reward and
// Failed point at the first block of their kind, Rewards and FailedBlocks hold
// every block in body order.
type SubmissionResult struct {
	Kind         ResultKind        `json:"kind"`
	Score        *float64          `json:"score,omitempty"`
	Reward       *RewardClaim      `json:"reward,omitempty"`
	Failed       *FailedBreakdown  `json:"failed,omitempty"`
	Rewards      []RewardClaim     `json:"rewards,omitempty"`
	FailedBlocks []FailedBreakdown `json:"failedBlocks,omitempty"`
	Raw          string            `json:"raw,omitempty"`
}

// ParseSubmissionResult classifies a webhook body. It never fails: bodies that
// are not JSON become raw text and unrecognized JSON becomes ResultUnknown.
func ParseSubmissionResult(contentType string, body []byte) SubmissionResult {
	raw := SubmissionResult{Kind: ResultRawText, Raw: string(body)}
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return raw
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return raw
	}

	res := SubmissionResult{Kind: ResultUnknown, Raw: string(body)}
	switch t := v.(type) {
	case map[string]any:
		if n, ok := t["score"].(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				res.Kind = ResultScore
				res.Score = &f
			}
		}
	case []any:
		for _, item := range t {
			block, ok := item.(map[string]any)
			if !ok {
				continue
			}
			data, ok := block["data"].([]any)
			if !ok {
				continue
			}
			var first map[string]any
			if len(data) > 0 {
				first, _ = data[0].(map[string]any)
			}
			if first != nil && truthy(first["Reward_Amount"]) {
				res.Rewards = append(res.Rewards, *rewardFromRow(first))
				continue
			}
			res.FailedBlocks = append(res.FailedBlocks, *failedFromRows(data))
		}
		if len(res.Rewards) > 0 {
			res.Reward = &res.Rewards[0]
		}
		if len(res.FailedBlocks) > 0 {
			res.Failed = &res.FailedBlocks[0]
		}
		switch {
		case res.Reward != nil:
			res.Kind = ResultRewardClaim
		case res.Failed != nil:
			res.Kind = ResultFailedBreakdown
		}
	}
	return res
}

func rewardFromRow(row map[string]any) *RewardClaim {
	return &RewardClaim{
		QuizAttemptID: text(row["Quiz_Attempt_ID"]),
		Amount:        text(row["Reward_Amount"]),
		RawClaimID:    text(row["Raw_Claim_ID"]),
		Signature:     text(row["Signature"]),
		Status:        text(row["Status"]),
	}
}

func failedFromRows(rows []any) *FailedBreakdown {
	out := &FailedBreakdown{Questions: []FailedQuestion{}}
	for i, item := range rows {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if i == 0 {
			out.TotalPassed = integer(row["Total_Passed"])
			out.TotalFailed = integer(row["Total_Failed"])
		}
		out.Questions = append(out.Questions, FailedQuestion{
			ID:   text(row["Failed_Question_ID"]),
			Text: text(row["Failed_Questions_Text"]),
		})
	}
	return out
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func integer(v any) *int {
	n, ok := v.(json.Number)
	if !ok {
		return nil
	}
	i, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return nil
		}
		i = int64(f)
	}
	out := int(i)
	return &out
}
