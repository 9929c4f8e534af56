// Package aimodel provides the HTTP client for the external chat-completion
// model used by the LLM analysis strategies.
package aimodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/turtacn/naps/internal/config"
	"github.com/turtacn/naps/pkg/errors"
	"github.com/turtacn/naps/pkg/logger"
)

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates the chat-completion client from configuration.
func NewClient(cfg config.AIConfig, log logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithComponent("ai_model_client"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends a system and user prompt pair and returns the model's reply
// text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.ErrInternal("failed to encode model request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", errors.ErrInternal("failed to build model request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.ErrUnavailable("model endpoint unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.ErrUnavailable("failed to read model response").WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.ErrUnavailable(fmt.Sprintf("model endpoint returned status %d", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.ErrUnavailable("failed to decode model response").WithCause(err)
	}
	if parsed.Error != nil {
		return "", errors.ErrUnavailable("model error: " + parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.ErrUnavailable("model returned no choices")
	}

	c.logger.Debug(ctx, "model completion received", logger.Fields{
		"model":      c.model,
		"latency_ms": time.Since(start).Milliseconds(),
	})
	return parsed.Choices[0].Message.Content, nil
}
