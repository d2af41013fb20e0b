// Package llm implements the optional chat-completion collaborator used
// to enrich articles with better summaries and topic suggestions. The
// pipeline works correctly with this client entirely absent.
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

	"newsdash/internal/config"
	"newsdash/internal/ports"
)

const maxTopicSuggestions = 5

// ChatClient talks to an OpenAI-compatible chat-completions endpoint.
type ChatClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.ChatClient = (*ChatClient)(nil)

// NewChatClient builds a client from configuration.
func NewChatClient(cfg config.ChatConfig) *ChatClient {
	return &ChatClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Summarize asks the model for a short summary of the article content.
func (c *ChatClient) Summarize(ctx context.Context, content string) (string, error) {
	return c.complete(ctx,
		"You summarize news articles in two or three plain sentences.",
		content)
}

// SuggestTopics asks the model for up to five topic labels.
func (c *ChatClient) SuggestTopics(ctx context.Context, content, title string) ([]string, error) {
	raw, err := c.complete(ctx,
		"You label news articles. Reply with up to five short topic labels, comma separated, nothing else.",
		fmt.Sprintf("Title: %s\n\n%s", title, content))
	if err != nil {
		return nil, err
	}

	var topics []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			topics = append(topics, t)
		}
		if len(topics) == maxTopicSuggestions {
			break
		}
	}
	return topics, nil
}

func (c *ChatClient) complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chat client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}

	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}
