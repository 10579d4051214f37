package chunking

import (
	"errors"
	"fmt"
)

// ErrInvalidChunkSize is returned when the requested chunk size is not a positive integer.
var ErrInvalidChunkSize = errors.New("chunk size must be a positive integer")

// SourceReadError reports that the byte source became unreadable while slicing.
type SourceReadError struct {
	Offset int64
	Length int64
	Err    error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read %d bytes at offset %d: %s", e.Length, e.Offset, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}
