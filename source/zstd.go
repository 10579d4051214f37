package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bitrise-io/go-filechunker/chunking"
	"github.com/klauspost/compress/zstd"
)

const zstdExtension = ".zst"

func isZstdPath(path string) bool {
	return strings.HasSuffix(path, zstdExtension) || strings.HasSuffix(path, ".tzst")
}

// DecompressZstd reads a whole zstd stream into memory and returns the decompressed bytes as a source.
func DecompressZstd(r io.Reader) (chunking.ByteSource, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}

	return chunking.NewBytesSource(data), nil
}

// OpenZstdFile decompresses the zstd file at path into memory.
func OpenZstdFile(path string) (ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open file %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	src, err := DecompressZstd(file)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}

	return NopCloser(src), nil
}
