package app_test

import (
	"testing"

	"web3-quiz-service/internal/app"
	"web3-quiz-service/internal/domain"
)

func TestPercentage(t *testing.T) {
	if p := app.Percentage(7, 10); p == nil || *p != 70 {
		t.Fatalf("expected 70, got %v", p)
	}
	if p := app.Percentage(2, 3); *p != 67 {
		t.Fatalf("expected 67, got %d", *p)
	}
	if p := app.Percentage(3, 0); p != nil {
		t.Fatalf("expected nil for zero questions, got %d", *p)
	}
}

func TestMessageTiers(t *testing.T) {
	cases := map[int]string{
		100: app.MessageOutstanding,
		90:  app.MessageOutstanding,
		89:  app.MessageGreat,
		70:  app.MessageGreat,
		69:  app.MessageGoodEffort,
		50:  app.MessageGoodEffort,
		49:  app.MessageKeepGoing,
		0:   app.MessageKeepGoing,
	}
	for pct, want := range cases {
		if got := app.Message(pct); got != want {
			t.Fatalf("Message(%d) = %q, want %q", pct, got, want)
		}
	}
}

func TestPresentScore(t *testing.T) {
	score := 9.0
	view := app.Present(app.Snapshot{
		Total:  10,
		Params: domain.SessionParams{TimeLimit: 60},
		Result: &domain.SubmissionResult{Kind: domain.ResultScore, Score: &score, Raw: `{"score":9}`},
	})
	if view.Percentage == nil || *view.Percentage != 90 || view.Message != app.MessageOutstanding {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.Pending || view.Raw != "" {
		t.Fatalf("score result must not be pending nor show raw text: %+v", view)
	}
	if view.TimeLimitLabel != "60 seconds" {
		t.Fatalf("unexpected label %q", view.TimeLimitLabel)
	}
}

func TestPresentPendingWithoutScore(t *testing.T) {
	reward := &domain.RewardClaim{Amount: "1000", Status: domain.RewardUnclaimed}
	view := app.Present(app.Snapshot{
		Total:  5,
		Result: &domain.SubmissionResult{Kind: domain.ResultRewardClaim, Reward: reward},
	})
	if !view.Pending || view.PendingLabel != app.PendingLabel || view.Message != app.MessagePending {
		t.Fatalf("expected pending view, got %+v", view)
	}
	if view.Reward == nil || view.Reward.Amount != "1000" {
		t.Fatalf("expected reward block, got %+v", view.Reward)
	}
	if view.TimeLimitLabel != "No limit" {
		t.Fatalf("unexpected label %q", view.TimeLimitLabel)
	}
}

func TestPresentRawTextAndUnknown(t *testing.T) {
	raw := app.Present(app.Snapshot{Total: 1, Result: &domain.SubmissionResult{Kind: domain.ResultRawText, Raw: "ok"}})
	if raw.Raw != "ok" {
		t.Fatalf("expected raw text, got %q", raw.Raw)
	}
	unknown := app.Present(app.Snapshot{Total: 1, Result: &domain.SubmissionResult{Kind: domain.ResultUnknown, Raw: `{"x":1}`}})
	if unknown.Raw != "" || unknown.Reward != nil || unknown.Failed != nil {
		t.Fatalf("unknown result must render nothing, got %+v", unknown)
	}
}

func TestPresentEmptyAndFailedSubmission(t *testing.T) {
	empty := app.Present(app.Snapshot{Empty: true})
	if empty.Message != app.MessageEmpty || empty.Percentage != nil {
		t.Fatalf("unexpected empty view %+v", empty)
	}
	failed := app.Present(app.Snapshot{Total: 3, SubmissionError: "submission failed: 500 boom"})
	if failed.SubmissionError == "" || !failed.Pending {
		t.Fatalf("unexpected failed view %+v", failed)
	}
}

func TestPresentForwardsEveryBlock(t *testing.T) {
	res := domain.ParseSubmissionResult("application/json", []byte(`[
		{"data":[{"Quiz_Attempt_ID":"a-1","Reward_Amount":"5","Raw_Claim_ID":"c-1"}]},
		{"data":[{"Quiz_Attempt_ID":"a-2","Reward_Amount":"7","Raw_Claim_ID":"c-2"}]},
		{"data":[{"Total_Passed":1,"Total_Failed":1}]}
	]`))
	view := app.Present(app.Snapshot{Total: 2, Result: &res})
	if len(view.Rewards) != 2 || view.Rewards[1].Amount != "7" {
		t.Fatalf("expected both rewards forwarded, got %+v", view.Rewards)
	}
	if len(view.FailedBlocks) != 1 || view.Reward == nil || view.Reward.Amount != "5" {
		t.Fatalf("unexpected blocks in view %+v", view)
	}
	if view.Raw != "" {
		t.Fatalf("raw body is only shown for plain text results")
	}
}
