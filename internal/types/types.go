// Package types provides shared type definitions used across scenegen packages.
// This package exists to break import cycles between the generator, sandbox,
// exporter and pipeline. Types here should be foundational data structures with
// no complex dependencies.
package types

import (
	"regexp"
	"strings"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Mode distinguishes a fresh generation from a refinement of a prior script.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeRefine Mode = "refine"
)

// GenerationRequest is the caller's request to produce an asset.
type GenerationRequest struct {
	Prompt  string
	ModelID string
	Mode    Mode

	// Refine only
	PriorScript    string
	RefinementText string
}

// NewCreateRequest builds a create-mode request.
func NewCreateRequest(prompt, modelID string) GenerationRequest {
	return GenerationRequest{Prompt: prompt, ModelID: modelID, Mode: ModeCreate}
}

// NewRefineRequest builds a refine-mode request. The refinement text doubles
// as the prompt.
func NewRefineRequest(priorScript, refinementText, modelID string) GenerationRequest {
	return GenerationRequest{
		Prompt:         refinementText,
		ModelID:        modelID,
		Mode:           ModeRefine,
		PriorScript:    priorScript,
		RefinementText: refinementText,
	}
}

// Validate reports the first missing required field as KindInvalidRequest.
func (r GenerationRequest) Validate() error {
	switch r.Mode {
	case ModeCreate, "":
		if strings.TrimSpace(r.Prompt) == "" {
			return NewError(KindInvalidRequest, "validate", errMissing("prompt"))
		}
	case ModeRefine:
		if strings.TrimSpace(r.PriorScript) == "" {
			return NewError(KindInvalidRequest, "validate", errMissing("originalScript"))
		}
		if strings.TrimSpace(r.RefinementText) == "" {
			return NewError(KindInvalidRequest, "validate", errMissing("refinementPrompt"))
		}
	default:
		return NewError(KindInvalidRequest, "validate", errUnknownMode(r.Mode))
	}
	return nil
}

// =============================================================================
// ENVELOPE
// =============================================================================

// Envelope is the validated structured reply of the script generator.
type Envelope struct {
	Script   string `json:"script"`
	Filename string `json:"filename"`
}

// DefaultFilename replaces a suggested filename that sanitizes to nothing.
const DefaultFilename = "scene"

const maxFilenameLen = 64

var (
	filenameDisallowed = regexp.MustCompile(`[^a-z0-9_\s-]`)
	filenameSpaces     = regexp.MustCompile(`\s+`)
)

// SanitizeFilename lowercases name, drops a trailing .glb/.gltf, turns whitespace
// runs into underscores and removes everything outside [a-z0-9_-].
func SanitizeFilename(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimSuffix(s, ".glb")
	s = strings.TrimSuffix(s, ".gltf")
	s = filenameDisallowed.ReplaceAllString(s, "")
	s = filenameSpaces.ReplaceAllString(strings.TrimSpace(s), "_")
	if len(s) > maxFilenameLen {
		s = s[:maxFilenameLen]
	}
	if s == "" {
		return DefaultFilename
	}
	return s
}
