// Package replicate runs predictions against the Replicate HTTP API. The
// model output is left untyped; callers normalize it themselves.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dresscode-shop/gateway/internal/config"
)

// TryOnInput carries the image-to-image parameters. Seed and step count
// are fixed so identical inputs reproduce identical results.
type TryOnInput struct {
	HumanImage  string `json:"human_img"`
	GarmentURL  string `json:"garm_img"`
	GarmentDesc string `json:"garment_des"`
	Crop        bool   `json:"crop"`
	Seed        int    `json:"seed"`
	Steps       int    `json:"steps"`
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
}

type Client struct {
	cfg  config.ReplicateConfig
	hc   *http.Client
	poll time.Duration
}

func NewClient(cfg config.ReplicateConfig) *Client {
	return &Client{
		cfg:  cfg,
		hc:   &http.Client{Timeout: 70 * time.Second},
		poll: 2 * time.Second,
	}
}

// Run submits a prediction and blocks until it reaches a terminal status
// or ctx expires. The decoded output value is returned as-is: Replicate
// models disagree on shape (bare URL string, list of URLs, file objects),
// so no structure is assumed here.
func (c *Client) Run(ctx context.Context, input TryOnInput) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(map[string]any{
		"version": c.cfg.Version,
		"input":   input,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/predictions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	// Hold the connection until the prediction finishes when the API
	// supports it; otherwise fall back to polling below.
	req.Header.Set("Prefer", "wait=60")

	pred, err := c.do(req)
	if err != nil {
		return nil, err
	}

	for !terminal(pred.Status) {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("prediction %s: %w", pred.ID, ctx.Err())
		case <-time.After(c.poll):
		}

		pred, err = c.get(ctx, pred.ID)
		if err != nil {
			return nil, err
		}
	}

	if pred.Status != "succeeded" {
		return nil, fmt.Errorf("prediction %s %s: %v", pred.ID, pred.Status, pred.Error)
	}

	var output any
	if len(pred.Output) > 0 {
		if err := json.Unmarshal(pred.Output, &output); err != nil {
			return nil, fmt.Errorf("decoding prediction output: %w", err)
		}
	}
	return output, nil
}

func (c *Client) get(ctx context.Context, id string) (*prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/v1/predictions/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("creating poll request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*prediction, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("replicate returned %d: %s", resp.StatusCode, snippet)
	}

	var pred prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, fmt.Errorf("decoding prediction: %w", err)
	}
	return &pred, nil
}

func terminal(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}
