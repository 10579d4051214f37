package chunking

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultChunkSize is the chunk size used when the caller does not pick one.
const DefaultChunkSize int64 = 1024

// ChunkSpec describes the byte range [Start, End) of a single chunk.
type ChunkSpec struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Len returns the number of bytes covered by the spec.
func (s ChunkSpec) Len() int64 {
	return s.End - s.Start
}

func (s ChunkSpec) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Chunk is a read-only copy of the source over one ChunkSpec's range.
type Chunk struct {
	Spec ChunkSpec `json:"spec"`
	Data []byte    `json:"-"`
}

// ChunkSet holds chunks in ascending Start order.
type ChunkSet []Chunk

// Specs returns the byte ranges of the chunks in order.
func (cs ChunkSet) Specs() []ChunkSpec {
	specs := make([]ChunkSpec, 0, len(cs))
	for _, c := range cs {
		specs = append(specs, c.Spec)
	}
	return specs
}

// TotalSize returns the sum of all chunk lengths.
func (cs ChunkSet) TotalSize() int64 {
	var total int64
	for _, c := range cs {
		total += int64(len(c.Data))
	}
	return total
}

// Reader returns a reader that yields the chunks' data back to back.
func (cs ChunkSet) Reader() io.Reader {
	readers := make([]io.Reader, 0, len(cs))
	for _, c := range cs {
		readers = append(readers, bytes.NewReader(c.Data))
	}
	return io.MultiReader(readers...)
}

// Specs computes the chunk ranges for a source of the given length.
//
// Every range except possibly the last one is exactly chunkSize bytes long and the
// ranges cover [0, length) without gaps or overlaps. A zero length yields no ranges.
func Specs(length, chunkSize int64) ([]ChunkSpec, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, chunkSize)
	}
	if length < 0 {
		return nil, fmt.Errorf("invalid source length: %d", length)
	}

	count := length / chunkSize
	if length%chunkSize != 0 {
		count++
	}

	specs := make([]ChunkSpec, 0, count)
	for offset := int64(0); offset < length; offset += chunkSize {
		end := length
		// compared this way round so offset+chunkSize can't overflow
		if chunkSize < length-offset {
			end = offset + chunkSize
		}
		specs = append(specs, ChunkSpec{Start: offset, End: end})

		if end == length {
			break
		}
	}

	return specs, nil
}

// Split copies the source into an ordered ChunkSet of chunkSize-sized chunks.
//
// A chunkSize of zero or less fails with ErrInvalidChunkSize regardless of the source.
// Any failure to read the source is returned as a *SourceReadError.
func Split(source ByteSource, chunkSize int64) (ChunkSet, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, chunkSize)
	}

	if source == nil {
		return nil, &SourceReadError{Err: errors.New("no source")}
	}

	length := source.Size()
	if length < 0 {
		return nil, &SourceReadError{Err: fmt.Errorf("source reports negative size %d", length)}
	}

	specs, err := Specs(length, chunkSize)
	if err != nil {
		return nil, err
	}

	chunks := make(ChunkSet, 0, len(specs))
	for _, spec := range specs {
		data := make([]byte, spec.Len())
		if _, err := io.ReadFull(io.NewSectionReader(source, spec.Start, spec.Len()), data); err != nil {
			return nil, &SourceReadError{Offset: spec.Start, Length: spec.Len(), Err: err}
		}
		chunks = append(chunks, Chunk{Spec: spec, Data: data})
	}

	return chunks, nil
}
