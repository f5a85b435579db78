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

// Config holds LLM gateway settings
type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
}

// ChatClient is the minimal completion surface the evaluator adapter needs
type ChatClient interface {
	ChatCompletion(ctx context.Context, model, system, user string, temperature float64) (string, error)
}

// NewChatClient creates a chat client based on config
func NewChatClient(config Config) (ChatClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing LLM API key")
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &OpenAIClient{
		APIKey:    config.APIKey,
		BaseURL:   baseURL,
		Timeout:   config.Timeout,
		MaxTokens: maxTokens,
	}, nil
}

// OpenAIClient implements ChatClient against an OpenAI-compatible endpoint
type OpenAIClient struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
}

func (c *OpenAIClient) ChatCompletion(ctx context.Context, model, system, user string, temperature float64) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", fmt.Errorf("missing model")
	}

	// Chat Completions API (kept minimal: one system + one user message)
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type reqBody struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature,omitempty"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
	}
	body := reqBody{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   c.MaxTokens,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	client := &http.Client{Timeout: c.Timeout}
	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat http %d: %s", resp.StatusCode, string(respRaw))
	}

	type choice struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	type respBody struct {
		Choices []choice `json:"choices"`
	}
	var decoded respBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("chat response missing choices")
	}
	return decoded.Choices[0].Message.Content, nil
}
