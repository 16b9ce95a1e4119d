package config

import (
	"fmt"
	"time"
)

// LLMConfig configures the script generator and its providers.
type LLMConfig struct {
	// DefaultModel is used when a request names no model or an unknown one.
	DefaultModel string `yaml:"default_model"`

	// MaxOutputTokens bounds each provider reply.
	MaxOutputTokens int `yaml:"max_output_tokens"`

	// Timeout bounds a single provider call.
	Timeout string `yaml:"timeout"`

	Anthropic ProviderConfig `yaml:"anthropic"`
	Gemini    ProviderConfig `yaml:"gemini"`
	OpenAI    ProviderConfig `yaml:"openai"`
}

// ProviderConfig holds one provider's credential and endpoint.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// DefaultLLMConfig returns the LLM defaults.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		DefaultModel:    "claude-opus-4-20250514",
		MaxOutputTokens: 4096,
		Timeout:         "120s",
		Anthropic:       ProviderConfig{BaseURL: "https://api.anthropic.com/v1"},
		OpenAI:          ProviderConfig{BaseURL: "https://api.openai.com/v1"},
	}
}

// GetTimeout returns the provider call timeout as a duration.
func (c LLMConfig) GetTimeout() time.Duration {
	return parseDurationOr(c.Timeout, 120*time.Second)
}

// Validate checks generation limits.
func (c LLMConfig) Validate() error {
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("llm.max_output_tokens must be positive, got %d", c.MaxOutputTokens)
	}
	if c.DefaultModel == "" {
		return fmt.Errorf("llm.default_model must not be empty")
	}
	return nil
}
