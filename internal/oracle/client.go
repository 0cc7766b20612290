package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/me/dispatchsim/pkg/model"
)

// Client talks to a decision oracle over HTTP JSON.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates an oracle client.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
		Logger:     logger.With("component", "oracle-client"),
	}
}

type decideRequest struct {
	State []int64 `json:"state"`
}

type decideResponse struct {
	Action int `json:"action"`
}

type rewardRequest struct {
	TaskID int     `json:"task_id"`
	Reward float64 `json:"reward"`
}

type retrainRequest struct {
	TaskID int     `json:"task_id"`
	State  []int64 `json:"state"`
}

// Decide implements Oracle.
func (c *Client) Decide(ctx context.Context, state []int64) (int, error) {
	var resp decideResponse
	if err := c.post(ctx, "decide", decideRequest{State: state}, &resp); err != nil {
		return 0, err
	}
	return resp.Action, nil
}

// ReportReward implements Oracle.
func (c *Client) ReportReward(ctx context.Context, taskID int, reward float64) error {
	return c.post(ctx, "reward", rewardRequest{TaskID: taskID, Reward: reward}, nil)
}

// Retrain implements Oracle.
func (c *Client) Retrain(ctx context.Context, taskID int, state []int64) error {
	return c.post(ctx, "retrain", retrainRequest{TaskID: taskID, State: state}, nil)
}

// post performs one JSON round-trip. Any transport or non-200 outcome is
// wrapped as OracleUnavailableError.
func (c *Client) post(ctx context.Context, op string, body, out any) error {
	url := c.BaseURL + "/v1/" + op

	data, err := json.Marshal(body)
	if err != nil {
		return &model.OracleUnavailableError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &model.OracleUnavailableError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	c.Logger.Debug("oracle call", "op", op, "url", url)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &model.OracleUnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &model.OracleUnavailableError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return &model.OracleUnavailableError{
			Op:  op,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &model.OracleUnavailableError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}
