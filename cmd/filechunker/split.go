package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/bitrise-io/go-filechunker/chunking"
	"github.com/bitrise-io/go-filechunker/internal/multierror"
	"github.com/bitrise-io/go-filechunker/source"
	"github.com/bitrise-io/go-filechunker/worker"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/mitchellh/cli"
)

type splitCommand struct {
	ui      cli.Ui
	envRepo env.Repository
	logger  log.Logger
}

func newSplitCommand(ui cli.Ui, envRepo env.Repository, logger log.Logger) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &splitCommand{
			ui:      ui,
			envRepo: envRepo,
			logger:  logger,
		}, nil
	}
}

// Help ...
func (cmd *splitCommand) Help() string {
	return strings.TrimSpace(fmt.Sprintf(`
Usage: filechunker split [location ...]

  %s.

  A location is a local path, a glob pattern (e.g. "build/**/*.bin"),
  a file:// path, an s3://bucket/key object or an http(s):// URL.
  Every chunk is printed as "index start end size".

Environment:

  FILECHUNKER_CHUNK_SIZE   chunk size, e.g. 1024 or 4KiB (default: 1KiB)
  FILECHUNKER_TIMEOUT      per file timeout, e.g. 30s (default: none)
  FILECHUNKER_QUEUE_SIZE   worker request queue size (default: 16)
  FILECHUNKER_DECOMPRESS   decompress .zst files before splitting
  FILECHUNKER_VERIFY       check that the chunks reassemble the source
  FILECHUNKER_VERBOSE      enable debug logging
  FILECHUNKER_ANALYTICS    send usage analytics
  AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY
`, cmd.Synopsis()))
}

// Synopsis ...
func (cmd *splitCommand) Synopsis() string {
	return "Splits files into fixed-size chunks"
}

// Run ...
func (cmd *splitCommand) Run(args []string) int {
	cfg, err := parseConfig(cmd.envRepo)
	if err != nil {
		cmd.ui.Error(fmt.Sprintf("Invalid configuration: %s", err))
		return 1
	}
	cmd.logger.EnableDebugLog(cfg.Verbose)

	locations := expandLocations(args, pathutil.NewPathModifier(), cmd.logger)
	if len(locations) == 0 {
		cmd.ui.Error("No input files")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	observers := worker.Observers{worker.NewLogObserver(cmd.logger)}
	if cfg.Analytics {
		tracker := worker.NewTrackerObserver(cmd.envRepo, cmd.logger)
		observers = append(observers, tracker)
		defer tracker.Wait()
	}

	client := worker.NewClient(cfg.Worker, cmd.logger, worker.WithObserver(observers))
	defer client.Close() //nolint:errcheck

	opener := source.NewOpener(cfg.S3, cfg.Decompress, cmd.logger)

	var errs multierror.Error
	for _, location := range locations {
		if err := cmd.splitLocation(ctx, client, opener, location, cfg); err != nil {
			cmd.ui.Error(fmt.Sprintf("%s: %s", location, err))
			multierror.Append(&errs, fmt.Errorf("%s: %w", location, err))
		}
	}

	stats := client.Stats()
	cmd.logger.Debugf("Worker stats: %d handled, %d failed, average %s, moving average %s",
		stats.Finished, stats.Failed, stats.Average, stats.MovingAverage)

	if err := errs.ErrorOrNil(); err != nil {
		cmd.logger.Errorf("%d of %d files failed", len(errs), len(locations))
		return 3
	}

	cmd.logger.Donef("Split %d files", len(locations))
	return 0
}

func (cmd *splitCommand) splitLocation(ctx context.Context, client *worker.Client, opener *source.Opener, location string, cfg config) error {
	cmd.logger.Infof("Splitting %s", location)

	src, err := opener.Open(ctx, location)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer src.Close() //nolint:errcheck

	chunks, err := client.SplitIntoChunks(ctx, src, cfg.ChunkSize)
	if err != nil {
		return err
	}

	printChunks(cmd.ui, location, chunks)

	if cfg.Verify {
		if err := verifyChunks(src, chunks); err != nil {
			return err
		}
		cmd.logger.Debugf("Chunks of %s verified", location)
	}

	return nil
}

func verifyChunks(src chunking.ByteSource, chunks chunking.ChunkSet) error {
	want := sha256.New()
	if _, err := io.Copy(want, io.NewSectionReader(src, 0, src.Size())); err != nil {
		return fmt.Errorf("read source for verification: %w", err)
	}

	got := sha256.New()
	if _, err := io.Copy(got, chunks.Reader()); err != nil {
		return fmt.Errorf("read chunks for verification: %w", err)
	}

	if !bytes.Equal(want.Sum(nil), got.Sum(nil)) {
		return fmt.Errorf("chunks do not reassemble the source")
	}
	return nil
}
