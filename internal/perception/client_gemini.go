package perception

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"scenegen/internal/logging"
)

// GeminiClient implements Client on the Google GenAI SDK.
type GeminiClient struct {
	config GeminiConfig

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiClient creates a Gemini client. The SDK client is created on first use
// because its constructor needs a context.
func NewGeminiClient(config GeminiConfig) *GeminiClient {
	return &GeminiClient{config: config}
}

func (c *GeminiClient) sdk(ctx context.Context) (*genai.Client, error) {
	c.once.Do(func() {
		cc := &genai.ClientConfig{
			APIKey:  c.config.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if c.config.BaseURL != "" {
			cc.HTTPOptions.BaseURL = c.config.BaseURL
		}
		c.client, c.initErr = genai.NewClient(ctx, cc)
	})
	return c.client, c.initErr
}

// Complete sends one GenerateContent request.
func (c *GeminiClient) Complete(ctx context.Context, r Request) (string, error) {
	if c.config.APIKey == "" {
		return "", fmt.Errorf("gemini: %w", ErrCredentialMissing)
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	client, err := c.sdk(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	startTime := time.Now()
	logging.APIDebug("[Gemini] Complete: model=%s system_len=%d user_len=%d", r.Model, len(r.SystemInstruction), len(r.UserContent))

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(r.MaxOutputTokens),
	}
	if r.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(r.SystemInstruction, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, r.Model, genai.Text(r.UserContent), cfg)
	if err != nil {
		logging.APIError("[Gemini] Complete: request failed: %v", err)
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	logging.API("[Gemini] Complete: completed in %v response_len=%d", time.Since(startTime), len(text))
	return text, nil
}
