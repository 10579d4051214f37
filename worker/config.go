package worker

import (
	"time"

	"github.com/bitrise-io/go-filechunker/chunking"
)

// Config holds the client settings.
type Config struct {
	// DefaultChunkSize is used by SplitIntoChunksDefault.
	DefaultChunkSize int64
	// QueueSize bounds the number of requests waiting for the worker.
	QueueSize int
	// Timeout bounds a single call, 0 means no timeout.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultChunkSize: chunking.DefaultChunkSize,
		QueueSize:        16,
		Timeout:          0,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.DefaultChunkSize == 0 {
		c.DefaultChunkSize = defaults.DefaultChunkSize
	}
	if c.QueueSize <= 0 {
		c.QueueSize = defaults.QueueSize
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	}
	return c
}
