package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaClient implements Client against a local Ollama server's HTTP API
type OllamaClient struct {
	endpoint string
	model    string
	client   *http.Client
}

// NewOllamaClient creates a client for the Ollama server at config.Endpoint
func NewOllamaClient(config *Config) *OllamaClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &OllamaClient{
		endpoint: strings.TrimRight(config.Endpoint, "/"),
		model:    config.Model,
		client:   &http.Client{Timeout: timeout},
	}
}

// chatRequest is the JSON body sent to /api/chat
type chatRequest struct {
	Model    string      `json:"model"`
	Messages []Message   `json:"messages"`
	Stream   bool        `json:"stream"`
	Options  chatOptions `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

// chatResponse is the non-streaming response from /api/chat
type chatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// tagsResponse is the response from /api/tags
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// pullRequest is the JSON body sent to /api/pull
type pullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// Chat sends a conversational completion request and returns the assistant
// message text.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		// Low temperature for consistent structured output
		Options: chatOptions{Temperature: 0.1},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	var result chatResponse
	if err := c.post(ctx, "/api/chat", body, &result); err != nil {
		return "", err
	}
	if result.Message.Content == "" {
		return "", fmt.Errorf("empty message in chat response")
	}
	return result.Message.Content, nil
}

// ListModels returns the names of all locally available models
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	url := c.endpoint + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(respBody))
	}

	var result tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode tags response: %w", err)
	}

	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// EnsureModel pulls the configured model if the server does not already
// have it.
func (c *OllamaClient) EnsureModel(ctx context.Context) error {
	names, err := c.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == c.model || strings.TrimSuffix(name, ":latest") == c.model {
			return nil
		}
	}

	body, err := json.Marshal(pullRequest{Name: c.model, Stream: false})
	if err != nil {
		return fmt.Errorf("marshal pull request: %w", err)
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := c.post(ctx, "/api/pull", body, &result); err != nil {
		return fmt.Errorf("pull model %s: %w", c.model, err)
	}
	return nil
}

// Model returns the configured model name
func (c *OllamaClient) Model() string {
	return c.model
}

// Close is a no-op; the client holds no persistent connections beyond the
// pooled http.Client transport.
func (c *OllamaClient) Close() error {
	return nil
}

// post sends a JSON POST and decodes the JSON response into out
func (c *OllamaClient) post(ctx context.Context, path string, body []byte, out any) error {
	url := c.endpoint + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP POST %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}
