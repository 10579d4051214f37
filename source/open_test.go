package source

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitrise-io/go-filechunker/chunking"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZstd(t *testing.T, path string, content []byte) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	content := testContent(2500)
	require.NoError(t, os.WriteFile(path, content, 0644))

	src, err := OpenFile(path)
	require.NoError(t, err)
	defer src.Close() //nolint:errcheck

	assert.Equal(t, path, src.Path())
	assert.Equal(t, int64(2500), src.Size())

	chunks, err := chunking.Split(src, 1024)
	require.NoError(t, err)
	assert.Equal(t, []chunking.ChunkSpec{{Start: 0, End: 1024}, {Start: 1024, End: 2048}, {Start: 2048, End: 2500}}, chunks.Specs())
}

func TestOpenFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenFile(filepath.Join(dir, "missing.bin"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = OpenFile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestOpenZstdFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin.zst")
	content := testContent(5000)
	writeZstd(t, path, content)

	src, err := OpenZstdFile(path)
	require.NoError(t, err)
	defer src.Close() //nolint:errcheck

	require.Equal(t, int64(5000), src.Size())
	chunks, err := chunking.Split(src, 4096)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, content[4096:], chunks[1].Data)
}

func TestDecompressZstd_InvalidInput(t *testing.T) {
	_, err := DecompressZstd(bytes.NewReader([]byte("definitely not zstd")))
	require.Error(t, err)
}

func TestOpener_Open(t *testing.T) {
	dir := t.TempDir()
	content := testContent(3000)

	plainPath := filepath.Join(dir, "plain.bin")
	require.NoError(t, os.WriteFile(plainPath, content, 0644))
	zstdPath := filepath.Join(dir, "packed.zst")
	writeZstd(t, zstdPath, content)

	tests := []struct {
		name       string
		location   string
		decompress bool
		wantSize   int64
		wantErr    error
	}{
		{name: "plain path", location: plainPath, wantSize: 3000},
		{name: "file scheme", location: "file://" + plainPath, wantSize: 3000},
		{name: "compressed without decompress", location: zstdPath, wantSize: fileSize(t, zstdPath)},
		{name: "compressed with decompress", location: zstdPath, decompress: true, wantSize: 3000},
		{name: "plain with decompress", location: plainPath, decompress: true, wantSize: 3000},
		{name: "missing file", location: filepath.Join(dir, "nope"), wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := NewOpener(S3Params{}, tt.decompress, log.NewLogger())

			src, err := opener.Open(context.Background(), tt.location)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			defer src.Close() //nolint:errcheck

			assert.Equal(t, tt.wantSize, src.Size())
		})
	}
}

func TestOpener_InvalidS3Location(t *testing.T) {
	opener := NewOpener(S3Params{Region: "us-east-1"}, false, log.NewLogger())

	_, err := opener.Open(context.Background(), "s3://bucket-only")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected s3://bucket/key")
}

func TestOpener_DecompressRemote(t *testing.T) {
	content := testContent(2000)
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	opener := NewOpener(S3Params{}, true, log.NewLogger())
	src, err := opener.maybeDecompress("remote/blob.zst", NopCloser(chunking.NewBytesSource(buf.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, int64(2000), src.Size())

	passthrough := NopCloser(chunking.NewBytesSource(content))
	src, err = opener.maybeDecompress("remote/blob.bin", passthrough)
	require.NoError(t, err)
	assert.Equal(t, passthrough, src)
}

func fileSize(t *testing.T, path string) int64 {
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}
