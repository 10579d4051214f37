package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/bitrise-io/go-filechunker/chunking"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/google/uuid"
)

type serveFunc func(ctx context.Context, requests <-chan Request, responses chan<- Response)

// Option configures a Client.
type Option func(*Client)

// WithObserver registers an observer on the client's worker.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

func withServeFunc(serve serveFunc) Option {
	return func(c *Client) {
		c.serve = serve
	}
}

// Client sends chunking requests to a single background worker.
// The worker is started on first use and reused until Close.
// It is safe to call SplitIntoChunks from multiple goroutines.
type Client struct {
	config   Config
	logger   log.Logger
	observer Observer
	service  *Service
	serve    serveFunc

	once      sync.Once
	requests  chan Request
	responses chan Response
	cancel    context.CancelFunc
	done      chan struct{}

	mu      sync.Mutex
	pending map[string]chan Response
	closed  bool
}

// NewClient creates a client. No goroutine is started until the first call.
func NewClient(config Config, logger log.Logger, opts ...Option) *Client {
	c := &Client{
		config:  config.withDefaults(),
		logger:  logger,
		pending: map[string]chan Response{},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.service = NewService(logger, c.observer)
	if c.serve == nil {
		c.serve = c.service.Serve
	}

	return c
}

func (c *Client) initialize() {
	c.once.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.requests = make(chan Request, c.config.QueueSize)
		c.responses = make(chan Response, c.config.QueueSize)
		c.done = make(chan struct{})

		serviceDone := make(chan struct{})
		go func() {
			defer close(serviceDone)
			c.serve(ctx, c.requests, c.responses)
		}()
		go c.dispatch(serviceDone)

		c.logger.Debugf("worker initialized (queue size: %d)", c.config.QueueSize)
	})
}

// SplitIntoChunksDefault splits source using the configured default chunk size.
func (c *Client) SplitIntoChunksDefault(ctx context.Context, source chunking.ByteSource) (chunking.ChunkSet, error) {
	return c.SplitIntoChunks(ctx, source, c.config.DefaultChunkSize)
}

// SplitIntoChunks asks the worker to split source and waits for its answer.
// A failure reported by the worker is returned as a *Failure.
// Cancelling ctx abandons the wait, the worker still finishes the request.
func (c *Client) SplitIntoChunks(ctx context.Context, source chunking.ByteSource, chunkSize int64) (chunking.ChunkSet, error) {
	c.initialize()

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	id := uuid.NewString()
	respCh, err := c.register(id)
	if err != nil {
		return nil, err
	}
	defer c.unregister(id)

	if c.requests == nil {
		return nil, channelFailure("worker was never started")
	}

	req := Request{
		ID:   id,
		Type: RequestSingleFile,
		Input: Input{
			File:      sourceName(source),
			Source:    source,
			ChunkSize: chunkSize,
		},
	}

	select {
	case c.requests <- req:
	case <-c.done:
		return nil, channelFailure("worker stopped before the request was sent")
	case <-ctx.Done():
		return nil, fmt.Errorf("send request: %w", ctx.Err())
	}

	select {
	case resp := <-respCh:
		return result(resp)
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for response: %w", ctx.Err())
	}
}

// Stats returns the worker's stats.
func (c *Client) Stats() Snapshot {
	return c.service.Stats().Snapshot()
}

// Close stops the worker. Pending and later calls fail with FailureChannel.
func (c *Client) Close() error {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
	})

	if c.cancel == nil {
		return nil
	}

	c.cancel()
	<-c.done
	return nil
}

func (c *Client) register(id string) (chan Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, channelFailure("client is closed")
	}

	ch := make(chan Response, 1)
	c.pending[id] = ch
	return ch, nil
}

func (c *Client) unregister(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

func (c *Client) dispatch(serviceDone <-chan struct{}) {
	defer close(c.done)

	for {
		select {
		case resp := <-c.responses:
			c.route(resp)
		case <-serviceDone:
			for {
				select {
				case resp := <-c.responses:
					c.route(resp)
				default:
					c.failPending()
					return
				}
			}
		}
	}
}

func (c *Client) route(resp Response) {
	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}
	c.mu.Unlock()

	if !ok {
		c.logger.Debugf("dropping response %s: no pending request", resp.ID)
		return
	}

	ch <- resp
}

func (c *Client) failPending() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for id, ch := range c.pending {
		ch <- errorResponse(id, channelFailure("worker stopped before answering"))
		delete(c.pending, id)
	}
}

func result(resp Response) (chunking.ChunkSet, error) {
	switch resp.Type {
	case ResponseDone:
		if resp.Payload.Chunks == nil {
			return chunking.ChunkSet{}, nil
		}
		return resp.Payload.Chunks, nil
	case ResponseError:
		if resp.Payload.Error == nil {
			return nil, &Failure{Kind: FailureUnexpected, Message: "error response without failure"}
		}
		return nil, resp.Payload.Error
	default:
		return nil, channelFailure(fmt.Sprintf("unexpected response type %q", resp.Type))
	}
}

func channelFailure(msg string) *Failure {
	return &Failure{Kind: FailureChannel, Message: msg}
}

func sourceName(source chunking.ByteSource) string {
	if named, ok := source.(interface{ Path() string }); ok {
		return named.Path()
	}
	return ""
}
