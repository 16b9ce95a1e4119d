// Package scriptgen turns a scene description into a validated script
// envelope: it assembles the instructions, makes one model call and checks
// the reply's shape.
package scriptgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scenegen/internal/logging"
	"scenegen/internal/perception"
	"scenegen/internal/types"
)

// DefaultMaxOutputTokens bounds the reply length when no option overrides it.
const DefaultMaxOutputTokens = 4096

// credentialChecker is implemented by clients that know, without a network
// call, whether a model can be served.
type credentialChecker interface {
	HasCredential(modelID string) bool
}

// Generator produces script envelopes. Safe for concurrent use.
type Generator struct {
	client          perception.Client
	catalog         *perception.Catalog
	maxOutputTokens int
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxOutputTokens overrides DefaultMaxOutputTokens. Non-positive values are ignored.
func WithMaxOutputTokens(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxOutputTokens = n
		}
	}
}

// NewGenerator creates a generator. A nil catalog means the built-in one.
func NewGenerator(client perception.Client, catalog *perception.Catalog, opts ...Option) *Generator {
	if catalog == nil {
		catalog = perception.DefaultCatalog()
	}
	g := &Generator{
		client:          client,
		catalog:         catalog,
		maxOutputTokens: DefaultMaxOutputTokens,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ResolveModel normalizes modelID against the catalog. Unknown and empty ids
// resolve to the catalog default.
func (g *Generator) ResolveModel(modelID string) perception.ModelInfo {
	info, fellBack := g.catalog.Resolve(modelID)
	if fellBack && modelID != "" {
		logging.GeneratorWarn("unknown model %q, using %s", modelID, info.ID)
	}
	return info
}

// GenerateFromPrompt asks the model for a new scene script.
func (g *Generator) GenerateFromPrompt(ctx context.Context, prompt, modelID string) (*types.Envelope, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, types.NewError(types.KindInvalidRequest, "scriptgen.GenerateFromPrompt",
			fmt.Errorf("prompt is empty"))
	}
	return g.complete(ctx, "scriptgen.GenerateFromPrompt", modelID, systemInstruction, prompt)
}

// RefineFromPriorScript asks the model for a complete replacement of
// priorScript that applies refinement.
func (g *Generator) RefineFromPriorScript(ctx context.Context, priorScript, refinement, modelID string) (*types.Envelope, error) {
	if strings.TrimSpace(priorScript) == "" {
		return nil, types.NewError(types.KindInvalidRequest, "scriptgen.RefineFromPriorScript",
			fmt.Errorf("prior script is empty"))
	}
	if strings.TrimSpace(refinement) == "" {
		return nil, types.NewError(types.KindInvalidRequest, "scriptgen.RefineFromPriorScript",
			fmt.Errorf("refinement is empty"))
	}
	return g.complete(ctx, "scriptgen.RefineFromPriorScript", modelID, refineInstruction,
		refineUserContent(priorScript, refinement))
}

func (g *Generator) complete(ctx context.Context, op, modelID, system, user string) (*types.Envelope, error) {
	info := g.ResolveModel(modelID)

	if cc, ok := g.client.(credentialChecker); ok && !cc.HasCredential(info.ID) {
		return nil, types.NewError(types.KindCredentialMissing, op,
			fmt.Errorf("%s: %w", info.Provider, perception.ErrCredentialMissing))
	}

	logging.Generator("requesting script from %s (%s)", info.ID, info.Provider)
	timer := logging.StartTimer(logging.CategoryGenerator, op)
	reply, err := g.client.Complete(ctx, perception.Request{
		Model:             info.ID,
		SystemInstruction: system,
		UserContent:       user,
		MaxOutputTokens:   g.maxOutputTokens,
	})
	timer.Stop()
	if err != nil {
		if errors.Is(err, perception.ErrCredentialMissing) {
			return nil, types.NewError(types.KindCredentialMissing, op, err)
		}
		return nil, types.NewError(types.KindProviderError, op, err)
	}

	env, err := ParseEnvelope(reply)
	if err != nil {
		logging.GeneratorWarn("invalid reply from %s: %v", info.ID, err)
		return nil, err
	}
	logging.GeneratorDebug("received script (%d bytes) filename=%s", len(env.Script), env.Filename)
	return env, nil
}
