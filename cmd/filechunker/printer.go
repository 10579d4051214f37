package main

import (
	"fmt"

	"github.com/bitrise-io/go-filechunker/chunking"
	"github.com/docker/go-units"
	"github.com/mitchellh/cli"
)

// printChunks writes one "index start end size" line per chunk and a summary line.
func printChunks(ui cli.Ui, name string, provider chunking.Provider) {
	var total int64
	for i := 0; i < provider.NumChunks(); i++ {
		spec := provider.ChunkSpec(i)
		size := provider.ChunkSize(i)
		total += size
		ui.Output(fmt.Sprintf("%d\t%d\t%d\t%d", i, spec.Start, spec.End, size))
	}

	ui.Info(fmt.Sprintf("%s: %d chunks, %s", name, provider.NumChunks(), units.HumanSizeWithPrecision(float64(total), 3)))
}
