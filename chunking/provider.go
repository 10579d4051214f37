package chunking

import (
	"bytes"
	"fmt"
	"io"
)

// Provider gives indexed access to a sequence of chunks.
type Provider interface {
	// NumChunks returns the total number of chunks.
	NumChunks() int

	// ChunkSize returns the size of the chunk at the given index.
	ChunkSize(index int) int64

	// ChunkSpec returns the byte range of the chunk at the given index.
	ChunkSpec(index int) ChunkSpec

	// GetChunk returns a reader for the chunk at the given index.
	// It may be called multiple times for the same index.
	GetChunk(index int) (io.Reader, error)
}

// NumChunks returns the total number of chunks.
func (cs ChunkSet) NumChunks() int {
	return len(cs)
}

// ChunkSize returns the size of the chunk at the given index, or 0 if it is out of range.
func (cs ChunkSet) ChunkSize(index int) int64 {
	if index < 0 || index >= len(cs) {
		return 0
	}
	return int64(len(cs[index].Data))
}

// ChunkSpec returns the byte range of the chunk at the given index, or the zero spec if it is out of range.
func (cs ChunkSet) ChunkSpec(index int) ChunkSpec {
	if index < 0 || index >= len(cs) {
		return ChunkSpec{}
	}
	return cs[index].Spec
}

// GetChunk returns a reader for the chunk at the given index.
func (cs ChunkSet) GetChunk(index int) (io.Reader, error) {
	if index < 0 || index >= len(cs) {
		return nil, fmt.Errorf("chunk index %d out of range [0, %d)", index, len(cs))
	}
	return bytes.NewReader(cs[index].Data), nil
}
