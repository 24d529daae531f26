package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"web3-quiz-service/internal/domain"
)

// Client asks the question generation service for a fresh set of questions.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewClient(url, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{url: url, apiKey: apiKey, http: httpClient}
}

type generateRequest struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// FetchQuestions makes a single request; there is no retry.
func (c *Client) FetchQuestions(ctx context.Context, category, difficulty string, count int) ([]domain.Question, error) {
	body, err := json.Marshal(generateRequest{Category: category, Difficulty: difficulty, Count: count})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrQuestionFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuestionFetch, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuestionFetch, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrQuestionFetch, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrQuestionFetch, resp.StatusCode, bytes.TrimSpace(raw))
	}

	records, err := decodeRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuestionFetch, err)
	}
	return domain.NormalizeQuestions(records), nil
}

// decodeRecords accepts a bare array or an object wrapping it under "questions".
func decodeRecords(raw []byte) ([]domain.RawQuestion, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var records []domain.RawQuestion
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
		return records, nil
	}

	var wrapped struct {
		Questions    []domain.RawQuestion `json:"questions"`
		QuestionsCap []domain.RawQuestion `json:"Questions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if wrapped.Questions != nil {
		return wrapped.Questions, nil
	}
	return wrapped.QuestionsCap, nil
}
