// Package perception is the boundary to hosted language models. It owns the
// model catalog, one client per provider and the router that picks a client
// for a model id.
package perception

import (
	"context"
	"errors"
)

// Request is a single-turn completion request.
type Request struct {
	Model             string
	SystemInstruction string
	UserContent       string
	MaxOutputTokens   int
}

// Client defines the interface for LLM providers. Implementations make exactly
// one network call per Complete and never retry.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrCredentialMissing is returned, before any network call, when the provider
// serving a model has no API key configured.
var ErrCredentialMissing = errors.New("provider credential not configured")

// ErrEmptyCompletion is returned when a provider answers without any text.
var ErrEmptyCompletion = errors.New("no completion returned")
