package rag

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures. The set is closed: every error returned by
// Pipeline carries exactly one of these.
type Kind int

const (
	// KindInternal is an unexpected failure inside the service.
	KindInternal Kind = iota
	// KindValidation is a request the pipeline refuses to process.
	KindValidation
	// KindProvider is a failed call to the embedding provider.
	KindProvider
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindProvider:
		return "provider"
	default:
		return "internal"
	}
}

// Error is the error type returned by Pipeline operations.
// Its message is the message of the underlying error, unchanged.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err. Errors not produced by this package are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func validationErrorf(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}
