package perception

import (
	"context"
	"fmt"

	"scenegen/internal/config"
	"scenegen/internal/logging"
)

// Router dispatches a request to the client of the provider that serves its
// model. Providers without a client fail with ErrCredentialMissing.
type Router struct {
	catalog *Catalog
	clients map[Provider]Client
}

// NewRouter creates a router over an explicit client set.
func NewRouter(catalog *Catalog, clients map[Provider]Client) *Router {
	cs := make(map[Provider]Client, len(clients))
	for p, c := range clients {
		if c != nil {
			cs[p] = c
		}
	}
	return &Router{catalog: catalog, clients: cs}
}

// NewRouterFromConfig builds one client per provider that has an API key.
func NewRouterFromConfig(catalog *Catalog, cfg config.LLMConfig) *Router {
	timeout := cfg.GetTimeout()
	clients := make(map[Provider]Client)

	if cfg.Anthropic.APIKey != "" {
		clients[ProviderAnthropic] = NewAnthropicClient(AnthropicConfig{
			APIKey:  cfg.Anthropic.APIKey,
			BaseURL: cfg.Anthropic.BaseURL,
			Timeout: timeout,
		})
	}
	if cfg.Gemini.APIKey != "" {
		clients[ProviderGemini] = NewGeminiClient(GeminiConfig{
			APIKey:  cfg.Gemini.APIKey,
			BaseURL: cfg.Gemini.BaseURL,
			Timeout: timeout,
		})
	}
	if cfg.OpenAI.APIKey != "" {
		clients[ProviderOpenAI] = NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: timeout,
		})
	}

	configured := make([]Provider, 0, len(clients))
	for p := range clients {
		configured = append(configured, p)
	}
	logging.BootDebug("LLM providers with credentials: %v", configured)

	return NewRouter(catalog, clients)
}

// Catalog returns the router's catalog.
func (r *Router) Catalog() *Catalog {
	return r.catalog
}

// HasCredential reports whether the provider serving modelID is configured.
func (r *Router) HasCredential(modelID string) bool {
	info, ok := r.catalog.Lookup(modelID)
	if !ok {
		return false
	}
	_, ok = r.clients[info.Provider]
	return ok
}

// Complete routes req by req.Model, which must already be a catalog id.
func (r *Router) Complete(ctx context.Context, req Request) (string, error) {
	info, ok := r.catalog.Lookup(req.Model)
	if !ok {
		return "", fmt.Errorf("model %q is not in the catalog", req.Model)
	}
	client, ok := r.clients[info.Provider]
	if !ok {
		return "", fmt.Errorf("%s: %w", info.Provider, ErrCredentialMissing)
	}
	return client.Complete(ctx, req)
}
