package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bitrise-io/go-filechunker/chunking"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSplit(t *testing.T, envVars map[string]string, args ...string) (int, *cli.MockUi) {
	ui := cli.NewMockUi()
	factory := newSplitCommand(ui, fakeEnvRepo{envVars: envVars}, log.NewLogger())
	cmd, err := factory()
	require.NoError(t, err)

	return cmd.Run(args), ui
}

func writeFile(t *testing.T, path string, size int) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("z", size)), 0644))
}

func TestSplitCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	writeFile(t, path, 2500)

	status, ui := runSplit(t, map[string]string{"FILECHUNKER_VERIFY": "true"}, path)

	require.Equal(t, 0, status, ui.ErrorWriter.String())
	lines := strings.Split(strings.TrimSpace(ui.OutputWriter.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "0\t0\t1024\t1024", lines[0])
	assert.Equal(t, "1\t1024\t2048\t1024", lines[1])
	assert.Equal(t, "2\t2048\t2500\t452", lines[2])
	assert.Contains(t, lines[3], "3 chunks")
	assert.Contains(t, lines[3], "2.5kB")
}

func TestSplitCommand_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	writeFile(t, path, 0)

	status, ui := runSplit(t, map[string]string{}, path)

	require.Equal(t, 0, status)
	assert.Contains(t, ui.OutputWriter.String(), "0 chunks")
}

func TestSplitCommand_Glob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "build", "x", "one.bin"), 10)
	writeFile(t, filepath.Join(dir, "build", "y", "two.bin"), 20)
	writeFile(t, filepath.Join(dir, "build", "y", "skip.txt"), 30)

	status, ui := runSplit(t, map[string]string{"FILECHUNKER_CHUNK_SIZE": "8"}, filepath.Join(dir, "build", "**", "*.bin"))

	require.Equal(t, 0, status, ui.ErrorWriter.String())
	out := ui.OutputWriter.String()
	assert.Contains(t, out, "one.bin: 2 chunks")
	assert.Contains(t, out, "two.bin: 3 chunks")
	assert.NotContains(t, out, "skip.txt")
}

func TestSplitCommand_Failures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	writeFile(t, path, 10)

	tests := []struct {
		name       string
		envVars    map[string]string
		args       []string
		wantStatus int
		wantErr    string
	}{
		{
			name:       "invalid chunk size",
			envVars:    map[string]string{"FILECHUNKER_CHUNK_SIZE": "-5"},
			args:       []string{path},
			wantStatus: 1,
			wantErr:    "Invalid configuration",
		},
		{
			name:       "no inputs",
			envVars:    map[string]string{},
			wantStatus: 2,
			wantErr:    "No input files",
		},
		{
			name:       "missing file",
			envVars:    map[string]string{},
			args:       []string{path, filepath.Join(dir, "missing.bin")},
			wantStatus: 3,
			wantErr:    "source not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ui := runSplit(t, tt.envVars, tt.args...)

			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, ui.ErrorWriter.String(), tt.wantErr)
		})
	}
}

func TestVerifyChunks(t *testing.T) {
	src := chunking.NewBytesSource([]byte("abcdefgh"))
	chunks, err := chunking.Split(src, 3)
	require.NoError(t, err)
	require.NoError(t, verifyChunks(src, chunks))

	chunks[1].Data = []byte("XYZ")
	require.Error(t, verifyChunks(src, chunks))
}

func TestExpandLocations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), 1)
	writeFile(t, filepath.Join(dir, "nested", "b.bin"), 1)

	got := expandLocations([]string{
		"s3://bucket/key*",
		"https://example.com/*.bin",
		filepath.Join(dir, "plain.bin"),
		filepath.Join(dir, "**", "*.bin"),
		filepath.Join(dir, "*.none"),
	}, pathutil.NewPathModifier(), log.NewLogger())

	assert.ElementsMatch(t, []string{
		"s3://bucket/key*",
		"https://example.com/*.bin",
		filepath.Join(dir, "plain.bin"),
		filepath.Join(dir, "a.bin"),
		filepath.Join(dir, "nested", "b.bin"),
	}, got)
}

func TestVersionCommand(t *testing.T) {
	ui := cli.NewMockUi()
	cmd, err := newVersionCommand(ui)()
	require.NoError(t, err)

	assert.Equal(t, 0, cmd.Run(nil))
	assert.Equal(t, "filechunker 0.0.0\n", ui.OutputWriter.String())
}
