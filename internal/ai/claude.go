package ai

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

const (
	claudeAPIURL       = "https://api.anthropic.com"
	claudeAPIVersion   = "2023-06-01"
	defaultClaudeModel = "claude-sonnet-4-20250514"
	claudeMaxTokens    = 1024
)

const claudeSystemPrompt = "You are a helpful movie expert. You always answer with valid JSON."

// ClaudeProvider talks to the Anthropic Messages API. It has no image model,
// so GeneratePoster returns ErrUnsupported.
type ClaudeProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	model      string
}

// ClaudeConfig holds configuration for the Claude provider.
type ClaudeConfig struct {
	APIKey  string
	Model   string
	BaseURL string // defaults to the public API
	Timeout time.Duration
}

// NewClaudeProvider creates a new Claude API client.
func NewClaudeProvider(config ClaudeConfig) *ClaudeProvider {
	model := config.Model
	if model == "" {
		model = defaultClaudeModel
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = claudeAPIURL
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &ClaudeProvider{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		model: model,
	}
}

// Name returns the provider name.
func (c *ClaudeProvider) Name() string { return "anthropic" }

// Message represents a message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Role       string          `json:"role"`
	Content    []claudeContent `json:"content"`
	StopReason string          `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends a completion request to Claude and returns the first text block.
func (c *ClaudeProvider) Complete(ctx context.Context, system, user string) (string, error) {
	req := claudeRequest{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
		System:    system,
		Messages: []Message{
			{Role: "user", Content: user},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var claudeResp claudeResponse
	if err := json.Unmarshal(respBody, &claudeResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if claudeResp.Error != nil {
		return "", fmt.Errorf("API error: %s - %s", claudeResp.Error.Type, claudeResp.Error.Message)
	}

	for _, block := range claudeResp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", ErrEmptyResponse
}

// Recommend asks Claude for one movie matching the phrase.
func (c *ClaudeProvider) Recommend(ctx context.Context, in RecommendInput) (*Recommendation, error) {
	prompt := recommendPrompt(in) + fmt.Sprintf(jsonInstructions, recommendShape)

	response, err := c.Complete(ctx, claudeSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	var rec Recommendation
	if err := decodeJSON(response, &rec); err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// FunFact asks Claude for one piece of trivia.
func (c *ClaudeProvider) FunFact(ctx context.Context, in FunFactInput) (*FunFact, error) {
	prompt := funFactPrompt(in) + fmt.Sprintf(jsonInstructions, funFactShape)

	response, err := c.Complete(ctx, claudeSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	var fact FunFact
	if err := decodeJSON(response, &fact); err != nil {
		return nil, err
	}
	if err := fact.Validate(); err != nil {
		return nil, err
	}
	return &fact, nil
}

// GeneratePoster is not available on Claude.
func (c *ClaudeProvider) GeneratePoster(ctx context.Context, in PosterInput) (*Poster, error) {
	return nil, fmt.Errorf("%s: %w", OpPoster, ErrUnsupported)
}
