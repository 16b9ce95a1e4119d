package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure a pipeline can report.
type ErrorKind string

const (
	KindNone                 ErrorKind = ""
	KindInvalidRequest       ErrorKind = "invalid_request"
	KindCredentialMissing    ErrorKind = "credential_missing"
	KindProviderError        ErrorKind = "provider_error"
	KindMalformedEnvelope    ErrorKind = "malformed_envelope"
	KindMissingContractField ErrorKind = "missing_contract_field"
	KindScriptSyntax         ErrorKind = "script_syntax_error"
	KindScriptRuntime        ErrorKind = "script_runtime_error"
	KindScriptContract       ErrorKind = "script_contract_violation"
	KindExportError          ErrorKind = "export_error"
)

// Error is a classified failure. Raw carries the offending provider text for
// malformed envelopes so callers can log it.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
	Raw  string
}

// NewError wraps err with a kind and the operation that failed.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// KindOf returns the kind of the first *Error in err's chain, or KindNone.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}

// RawOf returns the raw provider text attached to err, if any.
func RawOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Raw
	}
	return ""
}

func errMissing(field string) error {
	return fmt.Errorf("missing required field %q", field)
}

func errUnknownMode(m Mode) error {
	return fmt.Errorf("unknown mode %q", m)
}
