package worker

import (
	"errors"
	"fmt"

	"github.com/bitrise-io/go-filechunker/chunking"
)

// FailureKind classifies why a request failed.
type FailureKind string

const (
	// FailureInvalidChunkSize means the chunk size was not a positive integer.
	FailureInvalidChunkSize FailureKind = "invalid_chunk_size"
	// FailureSourceRead means the source could not be read.
	FailureSourceRead FailureKind = "source_read_error"
	// FailureUnknownOperation means the request type is not supported by the worker.
	FailureUnknownOperation FailureKind = "unknown_operation"
	// FailureChannel means the request could not be delivered or answered.
	FailureChannel FailureKind = "channel_error"
	// FailureUnexpected means the worker recovered from a panic while handling the request.
	FailureUnexpected FailureKind = "unexpected"
)

// Sentinels for errors.Is. A *Failure matches the sentinel of the same kind.
var (
	ErrInvalidChunkSize = &Failure{Kind: FailureInvalidChunkSize}
	ErrSourceRead       = &Failure{Kind: FailureSourceRead}
	ErrUnknownOperation = &Failure{Kind: FailureUnknownOperation}
	ErrChannel          = &Failure{Kind: FailureChannel}
	ErrUnexpected       = &Failure{Kind: FailureUnexpected}
)

// Failure is the error carried by an error response.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
}

func newFailure(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Message: err.Error(), Err: err}
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is reports whether target is a *Failure of the same kind.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return f.Kind == t.Kind
}

// classify maps an error of the chunking engine to a failure.
func classify(err error) *Failure {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}

	var readErr *chunking.SourceReadError
	switch {
	case errors.Is(err, chunking.ErrInvalidChunkSize):
		return newFailure(FailureInvalidChunkSize, err)
	case errors.As(err, &readErr):
		return newFailure(FailureSourceRead, err)
	default:
		return newFailure(FailureUnexpected, err)
	}
}
