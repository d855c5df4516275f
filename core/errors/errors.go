// Package errors provides standardized error types and helpers for the
// gencanon pipeline.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline error taxonomy
var (
	// ErrStructural indicates the document fails schema conformance
	ErrStructural = errors.New("structural error")
	// ErrUnresolvedReference indicates a pointer or identifier does not
	// resolve to an existing record
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrConfiguration indicates required configuration is absent
	ErrConfiguration = errors.New("configuration error")
	// ErrUnidentifiable indicates an identifier input tuple is incomplete
	ErrUnidentifiable = errors.New("unidentifiable")
)

// StructuralError represents a schema-conformance failure. It is fatal and
// aborts the pipeline before any stage mutates the document.
type StructuralError struct {
	Path    string // Document path of the failing element
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *StructuralError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("structural error at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("structural error: %s", e.Message)
}

func (e *StructuralError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrStructural
}

// UnresolvedReferenceError represents a pointer or identifier that cannot be
// resolved to an existing record. Stage-local occurrences are recorded as
// diagnostics; during final integrity validation it is fatal.
type UnresolvedReferenceError struct {
	RecordType string // Target registry (e.g. "FAM", "places")
	Pointer    string // Pointer or identifier that failed to resolve
	Err        error  // Underlying error, if any
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved %s reference: %s", e.RecordType, e.Pointer)
}

func (e *UnresolvedReferenceError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnresolvedReference
}

// ConfigurationError represents missing or contradictory configuration.
// It is fatal at the start of the stage that requires the setting.
type ConfigurationError struct {
	Field   string // Configuration key that is invalid or absent
	Message string // Human-readable error message
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// AmbiguousInputWarning represents input that could not be fully
// interpreted (e.g. an event with no derivable year). It is non-fatal: the
// stage resolves it via an explicit fallback and flags the derived field.
type AmbiguousInputWarning struct {
	Field   string // Field that was ambiguous
	Message string // Human-readable detail
}

func (e *AmbiguousInputWarning) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("ambiguous input in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("ambiguous input: %s", e.Message)
}

// Helper functions for creating common errors

// NewStructural creates a StructuralError
func NewStructural(path, message string) *StructuralError {
	return &StructuralError{Path: path, Message: message}
}

// NewUnresolved creates an UnresolvedReferenceError
func NewUnresolved(recordType, pointer string) *UnresolvedReferenceError {
	return &UnresolvedReferenceError{RecordType: recordType, Pointer: pointer}
}

// NewConfiguration creates a ConfigurationError
func NewConfiguration(field, message string) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
