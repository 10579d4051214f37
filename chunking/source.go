// Package chunking splits a byte source into fixed-size, contiguous, ordered chunks.
// It performs no I/O of its own beyond reading the source it is given and has no
// concurrency awareness; callers run it wherever they like.
package chunking

import (
	"bytes"
	"io"
)

// ByteSource is an immutable, sliceable sequence of bytes with a known total length.
// The engine only reads it through ReadAt and never retains it beyond a single Split call.
//
// *bytes.Reader, *strings.Reader and *io.SectionReader all satisfy it.
type ByteSource interface {
	io.ReaderAt

	// Size returns the total length of the source in bytes.
	Size() int64
}

// NewBytesSource wraps an in-memory byte slice as a ByteSource.
// The slice must not be modified while the source is in use.
func NewBytesSource(data []byte) ByteSource {
	return bytes.NewReader(data)
}
