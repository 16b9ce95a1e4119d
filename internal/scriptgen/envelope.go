package scriptgen

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"scenegen/internal/types"
)

// fencedBlock matches a ```json or bare ``` fenced block.
var fencedBlock = regexp.MustCompile("```(?:json|JSON)?[ \\t]*\\r?\\n([\\s\\S]*?)\\r?\\n?```")

// ParseEnvelope validates a raw model reply. The body of the first fenced
// block is used when there is one, otherwise the whole trimmed reply. The
// script is not checked here; the filename is sanitized.
func ParseEnvelope(raw string) (*types.Envelope, error) {
	body := strings.TrimSpace(raw)
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		body = strings.TrimSpace(m[1])
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, malformed(raw, fmt.Errorf("reply is not a JSON object: %w", err))
	}
	if fields == nil {
		return nil, malformed(raw, fmt.Errorf("reply is not a JSON object"))
	}

	script, err := stringField(fields, "script")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(script) == "" {
		return nil, types.NewError(types.KindMissingContractField, "scriptgen.ParseEnvelope",
			fmt.Errorf("field %q is empty", "script"))
	}
	filename, err := stringField(fields, "filename")
	if err != nil {
		return nil, err
	}

	return &types.Envelope{
		Script:   script,
		Filename: types.SanitizeFilename(filename),
	}, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", types.NewError(types.KindMissingContractField, "scriptgen.ParseEnvelope",
			fmt.Errorf("field %q is missing", name))
	}
	var s string
	if strings.TrimSpace(string(raw)) == "null" || json.Unmarshal(raw, &s) != nil {
		return "", types.NewError(types.KindMissingContractField, "scriptgen.ParseEnvelope",
			fmt.Errorf("field %q is not a string", name))
	}
	return s, nil
}

func malformed(raw string, err error) error {
	e := types.NewError(types.KindMalformedEnvelope, "scriptgen.ParseEnvelope", err)
	e.Raw = raw
	return e
}
