package chunking

import (
	"fmt"
	"strings"

	"github.com/docker/go-units"
)

// ParseChunkSize parses a chunk size given either as a plain byte count ("1024")
// or as a binary human size ("4KiB", "10m", "1GB"). The result must be positive.
// An empty string yields DefaultChunkSize.
func ParseChunkSize(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultChunkSize, nil
	}

	size, err := units.RAMInBytes(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidChunkSize, err)
	}
	if size <= 0 {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidChunkSize, value)
	}

	return size, nil
}
