package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"web3-quiz-service/internal/app"
	"web3-quiz-service/internal/domain"
)

// Client posts completed sessions to the grading webhook.
type Client struct {
	url       string
	http      *http.Client
	log       zerolog.Logger
	attemptID func() string
}

func NewClient(url string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{url: url, http: httpClient, log: log, attemptID: uuid.NewString}
}

// Submit sends one request per call with a freshly generated attempt id.
// Response bodies that cannot be parsed degrade to raw text.
func (c *Client) Submit(ctx context.Context, sub app.Submission) (domain.SubmissionResult, error) {
	payload := sub.Payload(c.attemptID())
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("build submission: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.SubmissionResult{}, fmt.Errorf("%w: %d %s", domain.ErrSubmissionRejected, resp.StatusCode, bytes.TrimSpace(raw))
	}
	if readErr != nil {
		c.log.Warn().Err(readErr).Str("attempt", payload.QuizAttemptID).Msg("read submission response")
		return domain.SubmissionResult{Kind: domain.ResultUnknown}, nil
	}

	result := domain.ParseSubmissionResult(resp.Header.Get("Content-Type"), raw)
	c.log.Debug().
		Str("attempt", payload.QuizAttemptID).
		Str("kind", string(result.Kind)).
		Msg("submission graded")
	return result, nil
}
