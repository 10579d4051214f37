// Package source opens local files, compressed files, S3 objects and HTTP(S) URLs
// as chunking.ByteSource values.
package source

import (
	"errors"
	"io"

	"github.com/bitrise-io/go-filechunker/chunking"
)

// ErrNotFound is returned when the location does not point to an existing object.
var ErrNotFound = errors.New("source not found")

// ReadCloser is a chunking.ByteSource that holds resources until it is closed.
type ReadCloser interface {
	chunking.ByteSource
	io.Closer
}

type nopCloser struct {
	chunking.ByteSource
}

func (nopCloser) Close() error { return nil }

// NopCloser returns a ReadCloser with a no-op Close method wrapping the given source.
func NopCloser(s chunking.ByteSource) ReadCloser {
	return nopCloser{ByteSource: s}
}
