package perception

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicClient_Complete(t *testing.T) {
	var got AnthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant",
			"content":[{"type":"text","text":"  {\"script\":\"return nil\","},{"type":"text","text":"\"filename\":\"x\"}  "}],
			"usage":{"input_tokens":10,"output_tokens":20}}`)
	}))
	defer srv.Close()

	c := NewAnthropicClient(AnthropicConfig{APIKey: "sk-ant-test", BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
	out, err := c.Complete(context.Background(), Request{
		Model:             "claude-opus-4-20250514",
		SystemInstruction: "sys",
		UserContent:       "a red cube",
		MaxOutputTokens:   1234,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"script":"return nil","filename":"x"}`, out)

	assert.Equal(t, "claude-opus-4-20250514", got.Model)
	assert.Equal(t, 1234, got.MaxTokens)
	assert.Equal(t, "sys", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "a red cube", got.Messages[0].Content)
}

func TestAnthropicClient_Errors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer srv.Close()

	c := NewAnthropicClient(AnthropicConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second})
	_, err := c.Complete(context.Background(), Request{Model: "m", MaxOutputTokens: 1})
	assert.ErrorContains(t, err, "status 429")
	assert.Equal(t, 1, calls, "no retries")

	noKey := NewAnthropicClient(AnthropicConfig{BaseURL: srv.URL})
	_, err = noKey.Complete(context.Background(), Request{Model: "m"})
	assert.ErrorIs(t, err, ErrCredentialMissing)
	assert.Equal(t, 1, calls, "no network call without a key")
}

func TestAnthropicClient_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"content":[]}`)
	}))
	defer srv.Close()

	c := NewAnthropicClient(AnthropicConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second})
	_, err := c.Complete(context.Background(), Request{Model: "m"})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-oa-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","model":"gpt-4o",
			"choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "sk-oa-test", BaseURL: srv.URL, Timeout: 5 * time.Second})
	out, err := c.Complete(context.Background(), Request{
		Model:             "gpt-4o",
		SystemInstruction: "sys",
		UserContent:       "user",
		MaxOutputTokens:   77,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	assert.Equal(t, "gpt-4o", got["model"])
	assert.EqualValues(t, 77, got["max_tokens"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestOpenAIClient_NoKey(t *testing.T) {
	c := NewOpenAIClient(OpenAIConfig{BaseURL: "http://127.0.0.1:1"})
	_, err := c.Complete(context.Background(), Request{Model: "gpt-4o"})
	assert.ErrorIs(t, err, ErrCredentialMissing)
}

func TestGeminiClient_NoKey(t *testing.T) {
	c := NewGeminiClient(GeminiConfig{})
	_, err := c.Complete(context.Background(), Request{Model: "gemini-2.5-pro"})
	assert.ErrorIs(t, err, ErrCredentialMissing)
}
