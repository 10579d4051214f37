package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/bitrise-io/go-filechunker/chunking"
	"github.com/bitrise-io/go-filechunker/source"
	"github.com/bitrise-io/go-filechunker/worker"
	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/v2/env"
)

// Inputs is read from the environment.
type Inputs struct {
	ChunkSize       string          `env:"FILECHUNKER_CHUNK_SIZE"`
	Timeout         string          `env:"FILECHUNKER_TIMEOUT"`
	QueueSize       int             `env:"FILECHUNKER_QUEUE_SIZE"`
	Verbose         bool            `env:"FILECHUNKER_VERBOSE"`
	Decompress      bool            `env:"FILECHUNKER_DECOMPRESS"`
	Verify          bool            `env:"FILECHUNKER_VERIFY"`
	Analytics       bool            `env:"FILECHUNKER_ANALYTICS"`
	Region          string          `env:"AWS_REGION"`
	AccessKeyID     string          `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey stepconf.Secret `env:"AWS_SECRET_ACCESS_KEY"`
}

type config struct {
	Verbose    bool
	Verify     bool
	Analytics  bool
	Decompress bool
	ChunkSize  int64
	Worker     worker.Config
	S3         source.S3Params
}

func parseConfig(envRepo env.Repository) (config, error) {
	var inputs Inputs
	if err := stepconf.NewInputParser(envRepo).Parse(&inputs); err != nil {
		return config{}, fmt.Errorf("parse inputs: %w", err)
	}

	chunkSize, err := chunking.ParseChunkSize(inputs.ChunkSize)
	if err != nil {
		return config{}, fmt.Errorf("FILECHUNKER_CHUNK_SIZE: %w", err)
	}

	var timeout time.Duration
	if strings.TrimSpace(inputs.Timeout) != "" {
		timeout, err = time.ParseDuration(inputs.Timeout)
		if err != nil {
			return config{}, fmt.Errorf("FILECHUNKER_TIMEOUT: %w", err)
		}
		if timeout < 0 {
			return config{}, fmt.Errorf("FILECHUNKER_TIMEOUT: must not be negative, got %s", timeout)
		}
	}

	if inputs.QueueSize < 0 {
		return config{}, fmt.Errorf("FILECHUNKER_QUEUE_SIZE: must not be negative, got %d", inputs.QueueSize)
	}

	workerConfig := worker.DefaultConfig()
	workerConfig.DefaultChunkSize = chunkSize
	workerConfig.Timeout = timeout
	if inputs.QueueSize > 0 {
		workerConfig.QueueSize = inputs.QueueSize
	}

	return config{
		Verbose:    inputs.Verbose,
		Verify:     inputs.Verify,
		Analytics:  inputs.Analytics,
		Decompress: inputs.Decompress,
		ChunkSize:  chunkSize,
		Worker:     workerConfig,
		S3: source.S3Params{
			Region:          inputs.Region,
			AccessKeyID:     inputs.AccessKeyID,
			SecretAccessKey: string(inputs.SecretAccessKey),
		},
	}, nil
}
