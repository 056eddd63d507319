package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/mveljko/codeclash-api/internal/config"
)

// Client submits code to the external judge for execution. The judge runs
// asynchronously and reports verdicts back through the results callback
// endpoint, authenticated with a judge api key.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.JudgeConfig) *Client {
	return &Client{
		baseURL:    cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

type ExecuteRequest struct {
	SubmissionID uuid.UUID       `json:"submission_id"`
	Language     string          `json:"language"`
	Code         string          `json:"code"`
	TestCases    json.RawMessage `json:"test_cases"`
}

// Execute hands a submission to the judge. Acceptance means queued, not
// judged; the verdict arrives later via callback.
func (c *Client) Execute(ctx context.Context, req ExecuteRequest) error {
	if !c.IsConfigured() {
		return fmt.Errorf("judge is not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode execute request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to reach judge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("judge rejected submission: %s", resp.Status)
	}
	return nil
}
