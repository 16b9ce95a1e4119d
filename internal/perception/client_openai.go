package perception

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"scenegen/internal/logging"
)

// OpenAIClient implements Client for the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
	hasKey bool
}

// NewOpenAIClient creates an OpenAI client.
func NewOpenAIClient(config OpenAIConfig) *OpenAIClient {
	cfg := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: config.Timeout}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		hasKey: config.APIKey != "",
	}
}

// Complete sends one chat completion with a system and a user message.
func (c *OpenAIClient) Complete(ctx context.Context, r Request) (string, error) {
	if !c.hasKey {
		return "", fmt.Errorf("openai: %w", ErrCredentialMissing)
	}

	startTime := time.Now()
	logging.APIDebug("[OpenAI] Complete: model=%s system_len=%d user_len=%d", r.Model, len(r.SystemInstruction), len(r.UserContent))

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if r.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: r.SystemInstruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: r.UserContent,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     r.Model,
		Messages:  messages,
		MaxTokens: r.MaxOutputTokens,
	})
	if err != nil {
		logging.APIError("[OpenAI] Complete: request failed: %v", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	logging.API("[OpenAI] Complete: completed in %v response_len=%d", time.Since(startTime), len(text))
	return text, nil
}
