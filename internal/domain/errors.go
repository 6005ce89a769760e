package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is matching against the typed errors below.
var (
	ErrInput          = errors.New("invalid input")
	ErrInvocation     = errors.New("model invocation failed")
	ErrExtraction     = errors.New("json extraction failed")
	ErrParse          = errors.New("malformed json")
	ErrValidation     = errors.New("schema validation failed")
	ErrRetryExhausted = errors.New("retry budget exhausted")
	ErrPermission     = errors.New("permission denied")
)

// InputError reports caller-supplied arguments that fail presence or shape checks.
type InputError struct {
	Field   string
	Message string
}

// NewInputError creates an InputError for a field.
func NewInputError(field, message string) *InputError {
	return &InputError{Field: field, Message: message}
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *InputError) Is(target error) bool { return target == ErrInput }

// InvocationError reports a failed model call: transport, non-2xx or empty body.
type InvocationError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *InvocationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s invocation failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s invocation failed: %v", e.Provider, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

func (e *InvocationError) Is(target error) bool { return target == ErrInvocation }

// ExtractionError reports that no plausible JSON object could be isolated.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string { return "extraction failed: " + e.Reason }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// ParseError reports a candidate that is not syntactically valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse failed: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Violation is one failed structural constraint.
type Violation struct {
	Path     string `json:"path"`
	Rule     string `json:"rule"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (expected %s, got %s)", v.Path, v.Rule, v.Expected, v.Actual)
}

// ValidationError reports parsed JSON that does not satisfy its schema.
type ValidationError struct {
	Kind       SchemaKind
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s validation failed: %s", e.Kind, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// RetryExhaustedError is returned once every allowed attempt has failed.
type RetryExhaustedError struct {
	Kind     SchemaKind
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("%s: no valid response after %d attempts: %v", e.Kind, e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

func (e *RetryExhaustedError) Is(target error) bool { return target == ErrRetryExhausted }

// PermissionError reports an operation restricted to development mode.
type PermissionError struct {
	Operation string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s is only allowed in development mode", e.Operation)
}

func (e *PermissionError) Is(target error) bool { return target == ErrPermission }
