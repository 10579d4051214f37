package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-io/go-utils/v2/retryhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/melbahja/got"
)

// HTTPSource reads byte ranges of a remote file with HTTP range requests.
type HTTPSource struct {
	ctx    context.Context
	client *retryablehttp.Client
	url    string
	size   int64
}

// OpenHTTP probes the URL with a HEAD request.
// When the server supports range requests, the returned source reads ranges on demand.
// Otherwise the whole file is downloaded into a temporary directory and read from disk.
func OpenHTTP(ctx context.Context, url string, logger log.Logger) (ReadCloser, error) {
	client := retryhttp.NewClient(logger)
	client.CheckRetry = createCustomRetryFunction(logger)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("head %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("head %s: unexpected status: %s", url, resp.Status)
	}

	if resp.Header.Get("Accept-Ranges") == "bytes" && resp.ContentLength >= 0 {
		logger.Debugf("%s supports range requests, size: %d", url, resp.ContentLength)
		return &HTTPSource{
			ctx:    ctx,
			client: client,
			url:    url,
			size:   resp.ContentLength,
		}, nil
	}

	logger.Debugf("%s does not support range requests, downloading", url)
	return downloadToTemp(ctx, client.StandardClient(), url)
}

func createCustomRetryFunction(logger log.Logger) func(context.Context, *http.Response, error) (bool, error) {
	return func(ctx context.Context, resp *http.Response, downloadErr error) (bool, error) {
		retry, err := retryablehttp.DefaultRetryPolicy(ctx, resp, downloadErr)
		logger.Debugf("CheckRetry: retry=%v ; err=%+v ; downloadErr=%+v", retry, err, downloadErr)
		return retry, err
	}
}

func downloadToTemp(ctx context.Context, client *http.Client, url string) (ReadCloser, error) {
	dir, err := pathutil.NewPathProvider().CreateTempDir("filechunker")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	dest := filepath.Join(dir, "download")

	downloader := got.New()
	downloader.Client = client
	if err := downloader.Do(got.NewDownload(ctx, url, dest)); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("download %s: %w", url, err)
	}

	src, err := OpenFile(dest)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	src.cleanup = func() error {
		return os.RemoveAll(dir)
	}

	return src, nil
}

// Size returns the Content-Length reported by the server.
func (s *HTTPSource) Size() int64 {
	return s.size
}

// ReadAt fetches len(p) bytes starting at offset off with a single range request.
func (s *HTTPSource) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= s.size {
		return 0, fmt.Errorf("offset %d outside resource of %d bytes", off, s.size)
	}

	want := int64(len(p))
	if off+want > s.size {
		want = s.size - off
	}

	req, err := retryablehttp.NewRequestWithContext(s.ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", off, off+want-1))

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("get range: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("get range: unexpected status: %s", resp.Status)
	}

	n, err := io.ReadFull(resp.Body, p[:want])
	if err != nil {
		return n, fmt.Errorf("read range body: %w", err)
	}
	if want < int64(len(p)) {
		return n, io.EOF
	}

	return n, nil
}

// Close is a no-op, range reads hold no open resources between calls.
func (s *HTTPSource) Close() error {
	return nil
}
