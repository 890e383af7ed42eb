// Package openai implements chat.Completer on an OpenAI-compatible chat
// completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/chat"
	"github.com/weathervibe/weathervibe/internal/provider/resilience"
)

const (
	// ProviderName identifies the assistant backend in the health registry.
	ProviderName = "openai"

	DefaultBaseURL = "https://api.openai.com"
	DefaultModel   = "gpt-4"
)

// ClientConfig holds configuration for the OpenAI client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string

	// HTTPClient defaults to a resilient client named ProviderName.
	HTTPClient *resilience.Client

	Logger zerolog.Logger
}

// Client calls /v1/chat/completions.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

var _ chat.Completer = (*Client)(nil)

// NewClient creates an OpenAI client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
}

type completionRequest struct {
	Model    string              `json:"model"`
	Messages []completionMessage `json:"messages"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
}

// Complete returns the first choice's content. Every failure is reported as
// chat.ErrAssistantUnavailable.
func (c *Client) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	payload := completionRequest{Model: c.model, Messages: make([]completionMessage, 0, len(turns))}
	for _, t := range turns {
		payload.Messages = append(payload.Messages, completionMessage{Role: string(t.Role), Content: t.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", chat.ErrAssistantUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("model", c.model).
		Int("status", resp.StatusCode).
		Msg("chat completion response")

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status code: %d", chat.ErrAssistantUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %w", chat.ErrAssistantUnavailable, err)
	}

	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %w", chat.ErrAssistantUnavailable, err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", chat.ErrAssistantUnavailable)
	}

	return out.Choices[0].Message.Content, nil
}
