package perception

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scenegen/internal/logging"
)

// AnthropicClient implements Client for the Anthropic Messages API.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// DefaultAnthropicConfig returns sensible defaults.
func DefaultAnthropicConfig(apiKey string) AnthropicConfig {
	return AnthropicConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.anthropic.com/v1",
		Timeout: 120 * time.Second,
	}
}

// NewAnthropicClient creates a new Anthropic client with custom config.
func NewAnthropicClient(config AnthropicConfig) *AnthropicClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultAnthropicConfig("").BaseURL
	}
	return &AnthropicClient{
		apiKey:  config.APIKey,
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Complete sends one Messages request and concatenates the text blocks.
func (c *AnthropicClient) Complete(ctx context.Context, r Request) (string, error) {
	startTime := time.Now()
	logging.APIDebug("[Anthropic] Complete: model=%s system_len=%d user_len=%d", r.Model, len(r.SystemInstruction), len(r.UserContent))

	if c.apiKey == "" {
		return "", fmt.Errorf("anthropic: %w", ErrCredentialMissing)
	}

	reqBody := AnthropicRequest{
		Model:     r.Model,
		MaxTokens: r.MaxOutputTokens,
		System:    r.SystemInstruction,
		Messages: []AnthropicMessage{
			{Role: "user", Content: r.UserContent},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.APIError("[Anthropic] Complete: request failed: %v", err)
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logging.APIError("[Anthropic] Complete: API returned status %d", resp.StatusCode)
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var anthropicResp AnthropicResponse
	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if anthropicResp.Error != nil {
		return "", fmt.Errorf("API error: %s", anthropicResp.Error.Message)
	}

	var result strings.Builder
	for _, content := range anthropicResp.Content {
		if content.Type == "text" {
			result.WriteString(content.Text)
		}
	}

	response := strings.TrimSpace(result.String())
	if response == "" {
		return "", ErrEmptyCompletion
	}
	logging.API("[Anthropic] Complete: completed in %v response_len=%d output_tokens=%d",
		time.Since(startTime), len(response), anthropicResp.Usage.OutputTokens)
	return response, nil
}
