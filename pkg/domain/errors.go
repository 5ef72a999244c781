package domain

import (
	"errors"
	"fmt"
)

// Error kinds reported by the binding engine. Match them with errors.Is.
var (
	// ErrLookup is an unknown top-level table or field name.
	ErrLookup = errors.New("lookup error")
	// ErrPath is a malformed path token or an index outside declared bounds.
	ErrPath = errors.New("path error")
	// ErrTypeMismatch is a dynamic kind incompatible with the declared field type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrOverflow is a value that does not fit its slot.
	ErrOverflow = errors.New("overflow")
	// ErrStack is recursion depth exhaustion. It matches ErrOverflow as well.
	ErrStack = fmt.Errorf("%w: recursion depth exhausted", ErrOverflow)
	// ErrArity is a callback return count that disagrees with its declaration.
	ErrArity = errors.New("arity error")
	// ErrAllocation is a handle or constant-buffer allocation failure.
	ErrAllocation = errors.New("allocation error")
	// ErrSchema is an invalid reflection index or schema description.
	ErrSchema = errors.New("schema error")
	// ErrUndefined is returned when evaluating a callback slot that was never assigned.
	ErrUndefined = errors.New("undefined callback")
	// ErrPublish is a runtime that refused a written table.
	ErrPublish = errors.New("publish failed")
)

// ErrSnapshotNotFound is returned when a snapshot cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// FieldError is a single failure located at a path.
type FieldError struct {
	Path   string // Full dotted/bracketed path
	Kind   error  // One of the sentinel kinds above
	Reason string // Human-readable reason
	Value  string // Offending value, rendered for diagnostics
}

// NewFieldError builds a FieldError with a formatted reason.
func NewFieldError(path string, kind error, format string, args ...any) *FieldError {
	return &FieldError{Path: path, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// WithValue attaches the rendered offending value.
func (e *FieldError) WithValue(v string) *FieldError {
	e.Value = v
	return e
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Path, e.Kind, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got %s)", e.Value)
	}
	return msg
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// AggregateError represents multiple failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// FieldErrors returns all errors if err is an AggregateError.
// Otherwise returns nil.
func FieldErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
