package types

import (
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "red_cube", "red_cube"},
		{"spaces and case", "Red Cube  Scene", "red_cube_scene"},
		{"punctuation dropped", "Cozy Cabin! (v2)", "cozy_cabin_v2"},
		{"extension dropped", "Robot.GLB", "robot"},
		{"path separators dropped", "../../etc/passwd", "etcpasswd"},
		{"hyphen kept", "low-poly tree", "low-poly_tree"},
		{"empty", "", "scene"},
		{"only symbols", "!!!", "scene"},
		{"unicode dropped", "café scène", "caf_scne"},
	}
	valid := regexp.MustCompile(`^[a-z0-9_-]+$`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, valid, got)
		})
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 100; i++ {
		long += "a"
	}
	assert.Len(t, SanitizeFilename(long), 64)
}

func TestGenerationRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  GenerationRequest
		kind ErrorKind
	}{
		{"create ok", NewCreateRequest("a red cube", ""), KindNone},
		{"create blank", NewCreateRequest("   ", "gpt-4o"), KindInvalidRequest},
		{"refine ok", NewRefineRequest("scene := three.NewScene()\nreturn scene", "make it blue", ""), KindNone},
		{"refine missing script", NewRefineRequest("", "make it blue", ""), KindInvalidRequest},
		{"refine missing text", NewRefineRequest("return nil", "", ""), KindInvalidRequest},
		{"unknown mode", GenerationRequest{Prompt: "x", Mode: "remix"}, KindInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.req.Validate()))
		})
	}
}

func TestErrorClassification(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("stage failed: %w", &Error{Kind: KindProviderError, Op: "complete", Err: cause, Raw: "raw text"})

	assert.Equal(t, KindProviderError, KindOf(err))
	assert.Equal(t, "raw text", RawOf(err))
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, &Error{Kind: KindProviderError})
	assert.NotErrorIs(t, err, &Error{Kind: KindExportError})
	assert.Equal(t, KindNone, KindOf(cause))

	var typed *Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, "complete: provider_error: boom", typed.Error())
}
