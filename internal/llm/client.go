// Package llm talks to an OpenAI-compatible chat-completions API and
// exposes the response as a token stream.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dresscode-shop/gateway/internal/config"
)

// Message is one chat turn in the upstream wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Client struct {
	cfg config.OpenAIConfig
	hc  *http.Client
}

func NewClient(cfg config.OpenAIConfig) *Client {
	// No Timeout on the http.Client: it would cap the whole stream.
	// Lifetime is bounded by the request context instead.
	return &Client{cfg: cfg, hc: &http.Client{}}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Stream   bool      `json:"stream"`
	Messages []Message `json:"messages"`
}

// StreamChat sends the ordered message list upstream and returns a Stream
// of content tokens. The caller must Close the stream. Cancelling ctx
// aborts the upstream call and the stream.
func (c *Client) StreamChat(ctx context.Context, messages []Message) (*Stream, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.cfg.Model,
		Stream:   true,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("chat upstream returned %d: %s", resp.StatusCode, snippet)
	}

	return newStream(resp.Body), nil
}
