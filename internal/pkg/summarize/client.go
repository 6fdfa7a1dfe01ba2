// Package summarize turns extracted document text into a summary via the
// OpenAI chat completions API.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1/chat/completions"
	DefaultModel   = "gpt-4"

	maxSummaryTokens = 500
	systemPrompt     = "You are a helpful assistant that summarizes PDF documents. Provide a concise but comprehensive summary."
)

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
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

// Client calls the completions endpoint behind a circuit breaker, so a
// degraded upstream sheds load fast instead of tying up handler goroutines.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
	breaker *gobreaker.CircuitBreaker[string]
}

// NewClient builds a summarization client; nil httpClient and empty
// baseURL/model fall back to defaults.
func NewClient(httpClient *http.Client, baseURL, apiKey, model string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	settings := gobreaker.Settings{
		Name:    "openai-completions",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
	}
}

// Summarize produces a summary of the given document text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	return c.breaker.Execute(func() (string, error) {
		return c.complete(ctx, text)
	})
}

func (c *Client) complete(ctx context.Context, text string) (string, error) {
	reqBody := chatRequest{
		Model:     c.model,
		MaxTokens: maxSummaryTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Please summarize the following document:\n\n" + text},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != nil {
			return "", fmt.Errorf("openai completions %d: %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("openai completions http %d", resp.StatusCode)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai completions returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
