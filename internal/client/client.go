// Package client is a typed HTTP client for the fraud scoring API, used by
// integrations and smoke tooling.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"fraudscore/internal/scoring"
	"fraudscore/internal/stats"
	"fraudscore/internal/txn"
)

// Client talks to one scoring service instance.
type Client struct {
	http *resty.Client
}

// New builds a client for the given base URL, e.g. "http://localhost:8000".
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

type apiError struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

// Predict scores a single transaction.
func (c *Client) Predict(ctx context.Context, t txn.Transaction) (scoring.Prediction, error) {
	var out scoring.Prediction
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(encodeTransaction(t)).
		SetResult(&out).
		SetError(&apiErr).
		Post("/predict")
	if err != nil {
		return scoring.Prediction{}, fmt.Errorf("predict request failed: %w", err)
	}
	if resp.IsError() {
		if len(apiErr.Fields) > 0 {
			return scoring.Prediction{}, txn.NewValidationError(apiErr.Error, apiErr.Fields...)
		}
		return scoring.Prediction{}, fmt.Errorf("predict failed: %s (%s)", apiErr.Error, resp.Status())
	}
	return out, nil
}

// BatchResponse is the batch endpoint payload.
type BatchResponse struct {
	Predictions []scoring.Prediction `json:"predictions"`
	Skipped     []scoring.SkippedRow `json:"skipped"`
	Total       int                  `json:"total"`
}

// PredictBatch uploads a CSV payload and returns the ordered predictions
// plus the skipped-row report.
func (c *Client) PredictBatch(ctx context.Context, csvPayload []byte) (BatchResponse, error) {
	var out BatchResponse
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/csv").
		SetBody(csvPayload).
		SetResult(&out).
		SetError(&apiErr).
		Post("/predict/batch")
	if err != nil {
		return BatchResponse{}, fmt.Errorf("batch request failed: %w", err)
	}
	if resp.IsError() {
		if len(apiErr.Fields) > 0 {
			return BatchResponse{}, txn.NewValidationError(apiErr.Error, apiErr.Fields...)
		}
		return BatchResponse{}, fmt.Errorf("batch failed: %s (%s)", apiErr.Error, resp.Status())
	}
	return out, nil
}

// Statistics fetches the running statistics snapshot.
func (c *Client) Statistics(ctx context.Context) (stats.RunningStatistics, error) {
	var out stats.RunningStatistics
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/stats")
	if err != nil {
		return stats.RunningStatistics{}, fmt.Errorf("stats request failed: %w", err)
	}
	if resp.IsError() {
		return stats.RunningStatistics{}, fmt.Errorf("stats failed: %s", resp.Status())
	}
	return out, nil
}

// Health reports whether the service is up and serving a loaded artifact.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("service unhealthy: %s", resp.Status())
	}
	return nil
}

func encodeTransaction(t txn.Transaction) map[string]float64 {
	m := make(map[string]float64, txn.FeatureCount)
	m["Time"] = t.Time
	m["Amount"] = t.Amount
	for i, v := range t.V {
		m[fmt.Sprintf("V%d", i+1)] = v
	}
	return m
}
