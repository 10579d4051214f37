package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/bitrise-io/go-filechunker/chunking"
	"github.com/bitrise-io/go-utils/v2/log"
)

// Service handles chunking requests one at a time.
// Apart from its stats it keeps no state between requests.
type Service struct {
	logger   log.Logger
	observer Observer
	stats    *Stats
}

// NewService creates a service. observer may be nil.
func NewService(logger log.Logger, observer Observer) *Service {
	return &Service{
		logger:   logger,
		observer: observer,
		stats:    NewStats(),
	}
}

// Stats returns the service's stats.
func (s *Service) Stats() *Stats {
	return s.stats
}

// Serve answers requests in arrival order until requests is closed or ctx is done.
// Every request gets exactly one response unless ctx ends first.
func (s *Service) Serve(ctx context.Context, requests <-chan Request, responses chan<- Response) {
	s.logger.Debugf("worker started")
	defer s.logger.Debugf("worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-requests:
			if !ok {
				return
			}

			resp := s.Handle(req)

			select {
			case responses <- resp:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Handle answers a single request. It never panics.
func (s *Service) Handle(req Request) (resp Response) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("recovered while handling request %s: %v", req.ID, r)
			resp = errorResponse(req.ID, newFailure(FailureUnexpected, fmt.Errorf("panic: %v", r)))
		}

		took := time.Since(start)
		s.stats.Update(took, resp.Type != ResponseDone)
		if s.observer != nil {
			s.observer.Observe(req, resp, took)
		}
	}()

	switch req.Type {
	case RequestSingleFile:
		return s.handleSingleFile(req)
	default:
		err := fmt.Errorf("unsupported request type %q", req.Type)
		return errorResponse(req.ID, newFailure(FailureUnknownOperation, err))
	}
}

func (s *Service) handleSingleFile(req Request) Response {
	s.logger.TDebugf("splitting %s into chunks of %d bytes", displayName(req), req.Input.ChunkSize)

	chunks, err := chunking.Split(req.Input.Source, req.Input.ChunkSize)
	if err != nil {
		return errorResponse(req.ID, classify(err))
	}

	return doneResponse(req.ID, chunks)
}
