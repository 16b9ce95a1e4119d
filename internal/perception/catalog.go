package perception

import (
	"fmt"
	"sort"
)

// Provider identifies an LLM vendor.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
)

// DefaultModelID is substituted for unknown or empty model ids.
const DefaultModelID = "claude-opus-4-20250514"

// ModelInfo describes one selectable model.
type ModelInfo struct {
	ID       string
	Label    string
	Provider Provider
}

var builtinModels = []ModelInfo{
	{ID: "claude-opus-4-20250514", Label: "Claude Opus 4", Provider: ProviderAnthropic},
	{ID: "claude-sonnet-4-20250514", Label: "Claude Sonnet 4", Provider: ProviderAnthropic},
	{ID: "claude-3-7-sonnet-20250219", Label: "Claude 3.7 Sonnet", Provider: ProviderAnthropic},
	{ID: "gemini-2.5-pro", Label: "Gemini 2.5 Pro", Provider: ProviderGemini},
	{ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash", Provider: ProviderGemini},
	{ID: "gpt-4.1", Label: "GPT-4.1", Provider: ProviderOpenAI},
	{ID: "gpt-4o", Label: "GPT-4o", Provider: ProviderOpenAI},
}

// Catalog is an immutable set of models with a default. Safe for concurrent use.
type Catalog struct {
	models    map[string]ModelInfo
	defaultID string
}

// NewCatalog builds a catalog. defaultID must name one of models.
func NewCatalog(defaultID string, models ...ModelInfo) (*Catalog, error) {
	m := make(map[string]ModelInfo, len(models))
	for _, info := range models {
		if info.ID == "" {
			return nil, fmt.Errorf("model with empty id")
		}
		if _, dup := m[info.ID]; dup {
			return nil, fmt.Errorf("duplicate model id %q", info.ID)
		}
		m[info.ID] = info
	}
	if _, ok := m[defaultID]; !ok {
		return nil, fmt.Errorf("default model %q is not in the catalog", defaultID)
	}
	return &Catalog{models: m, defaultID: defaultID}, nil
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultModelID, builtinModels...)
	if err != nil {
		panic(err) // builtin table is static
	}
	return c
}

// WithDefault returns a copy of the catalog using id as the default.
func (c *Catalog) WithDefault(id string) (*Catalog, error) {
	if _, ok := c.models[id]; !ok {
		return nil, fmt.Errorf("default model %q is not in the catalog", id)
	}
	return &Catalog{models: c.models, defaultID: id}, nil
}

// Default returns the default model.
func (c *Catalog) Default() ModelInfo {
	return c.models[c.defaultID]
}

// Lookup returns the model registered under id.
func (c *Catalog) Lookup(id string) (ModelInfo, bool) {
	info, ok := c.models[id]
	return info, ok
}

// Resolve normalizes a requested id. Unknown or empty ids resolve to the
// default; fellBack reports whether that happened.
func (c *Catalog) Resolve(id string) (info ModelInfo, fellBack bool) {
	if info, ok := c.models[id]; ok {
		return info, false
	}
	return c.Default(), true
}

// Models lists the catalog sorted by id.
func (c *Catalog) Models() []ModelInfo {
	out := make([]ModelInfo, 0, len(c.models))
	for _, info := range c.models {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
