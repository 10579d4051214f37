package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
)

const (
	fileScheme  = "file://"
	s3Scheme    = "s3://"
	httpScheme  = "http://"
	httpsScheme = "https://"
)

// Opener resolves a location to a byte source.
// Supported locations are plain paths, file://, s3://bucket/key, http:// and https:// URLs.
type Opener struct {
	S3 S3Params
	// Decompress decodes .zst and .tzst files before chunking.
	Decompress bool

	logger       log.Logger
	pathModifier pathutil.PathModifier
}

// NewOpener ...
func NewOpener(s3Params S3Params, decompress bool, logger log.Logger) *Opener {
	return &Opener{
		S3:           s3Params,
		Decompress:   decompress,
		logger:       logger,
		pathModifier: pathutil.NewPathModifier(),
	}
}

// Open returns a source for the given location. The caller must close it.
func (o *Opener) Open(ctx context.Context, location string) (ReadCloser, error) {
	switch {
	case strings.HasPrefix(location, s3Scheme):
		bucket, key, err := parseS3Location(location)
		if err != nil {
			return nil, err
		}
		src, err := OpenS3(ctx, bucket, key, o.S3, o.logger)
		if err != nil {
			return nil, err
		}
		return o.maybeDecompress(key, src)
	case strings.HasPrefix(location, httpScheme), strings.HasPrefix(location, httpsScheme):
		src, err := OpenHTTP(ctx, location, o.logger)
		if err != nil {
			return nil, err
		}
		return o.maybeDecompress(location, src)
	}

	path := strings.TrimPrefix(location, fileScheme)
	absPath, err := o.pathModifier.AbsPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", path, err)
	}

	if o.Decompress && isZstdPath(absPath) {
		return OpenZstdFile(absPath)
	}

	return OpenFile(absPath)
}

func (o *Opener) maybeDecompress(name string, src ReadCloser) (ReadCloser, error) {
	if !o.Decompress || !isZstdPath(name) {
		return src, nil
	}
	defer src.Close() //nolint:errcheck

	decoded, err := DecompressZstd(io.NewSectionReader(src, 0, src.Size()))
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", name, err)
	}

	return NopCloser(decoded), nil
}

func parseS3Location(location string) (string, string, error) {
	bucket, key, ok := strings.Cut(strings.TrimPrefix(location, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 location %q, expected s3://bucket/key", location)
	}
	return bucket, key, nil
}
