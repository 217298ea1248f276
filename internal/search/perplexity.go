package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.perplexity.ai"
	searchModel    = "llama-3.1-sonar-small-128k-online"
)

// PerplexityClient executes web searches through the Perplexity chat
// completions API. It implements chat.Searcher.
type PerplexityClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

type Option func(*PerplexityClient)

// WithBaseURL overrides the API endpoint. Tests point this at a local server.
func WithBaseURL(url string) Option {
	return func(c *PerplexityClient) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

func WithHTTPClient(httpc *http.Client) Option {
	return func(c *PerplexityClient) {
		c.httpc = httpc
	}
}

func NewPerplexityClient(apiKey string, opts ...Option) (*PerplexityClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("perplexity api key is required")
	}
	c := &PerplexityClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
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

// Search runs one query and returns the raw result text. The caller wraps it
// in a summarization prompt before it reaches the model.
func (c *PerplexityClient) Search(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model: searchModel,
		Messages: []completionMessage{
			{Role: "user", Content: "Search the web for: " + query},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("perplexity api: unexpected status %s", resp.Status)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("perplexity api: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("perplexity api: no choices in response")
	}
	return out.Choices[0].Message.Content, nil
}
