// Package apperrors defines the error taxonomy shared across the service
// layer: not-found (surfaced as 404, never retried), transient (external
// API/network failure, safe to retry), and fatal (persistence failure,
// aborts the enclosing mutation).
package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound signals an unknown repository id/locator or vector collection.
var ErrNotFound = errors.New("not found")

// TransientError wraps a recoverable external failure (network, GitHub API,
// generative call). Callers may retry; ingestion call sites typically
// substitute a deterministic fallback instead.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransient tags err as transient, annotated with the failing operation.
func NewTransient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

// FatalError wraps a persistence-layer failure. The enclosing mutation is
// rolled back and the error is not retried automatically.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: fatal failure: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// NewFatal tags err as fatal, annotated with the failing operation.
func NewFatal(op string, err error) error {
	return &FatalError{Op: op, Err: err}
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsFatal reports whether err is (or wraps) a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
