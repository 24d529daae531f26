package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"web3-quiz-service/internal/domain"
)

func TestFetchQuestionsNormalizesBothConventions(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"question":"What is a block?","options":["a","b"],"correctAnswer":"a","questionId":"q1"},
			{"Question":"What is a wallet?","Options":["c","d"],"CorrectAnswer":"d","QuestionId":2}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", server.Client())
	qs, err := client.FetchQuestions(context.Background(), "Blockchain_Basics", "medium", 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Category != "Blockchain_Basics" || got.Difficulty != "medium" || got.Count != 2 {
		t.Fatalf("unexpected request %+v", got)
	}
	if len(qs) != 2 || qs[1].Prompt != "What is a wallet?" || qs[1].ID != "2" {
		t.Fatalf("unexpected questions %+v", qs)
	}
}

func TestFetchQuestionsAcceptsWrappedObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"questions":[{"question":"Q","options":["x"]}]}`))
	}))
	defer server.Close()

	qs, err := NewClient(server.URL, "", nil).FetchQuestions(context.Background(), "DeFi", "easy", 1)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(qs) != 1 || qs[0].Prompt != "Q" {
		t.Fatalf("unexpected questions %+v", qs)
	}
}

func TestFetchQuestionsFailsOnceWithoutRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", nil).FetchQuestions(context.Background(), "DeFi", "easy", 10)
	if !errors.Is(err, domain.ErrQuestionFetch) {
		t.Fatalf("expected question fetch error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected exactly one call, got %d", calls)
	}
}
