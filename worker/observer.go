package worker

import (
	"time"

	"github.com/bitrise-io/go-utils/v2/analytics"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
)

// Observer is notified after the worker answers a request.
type Observer interface {
	Observe(req Request, resp Response, took time.Duration)
}

// Observers fans out to multiple observers in order.
type Observers []Observer

// Observe ...
func (o Observers) Observe(req Request, resp Response, took time.Duration) {
	for _, observer := range o {
		observer.Observe(req, resp, took)
	}
}

// LogObserver logs every response.
type LogObserver struct {
	logger log.Logger
}

// NewLogObserver ...
func NewLogObserver(logger log.Logger) LogObserver {
	return LogObserver{logger: logger}
}

// Observe ...
func (o LogObserver) Observe(req Request, resp Response, took time.Duration) {
	switch resp.Type {
	case ResponseDone:
		o.logger.Debugf("[%s] %s: %d chunks (%d bytes) in %s", req.ID, displayName(req), len(resp.Payload.Chunks), resp.Payload.Chunks.TotalSize(), took)
	case ResponseError:
		o.logger.Warnf("[%s] %s failed after %s: %s", req.ID, displayName(req), took, resp.Payload.Error)
	}
}

func displayName(req Request) string {
	if req.Input.File != "" {
		return req.Input.File
	}
	return string(req.Type)
}

type eventTracker interface {
	Enqueue(eventName string, properties ...analytics.Properties)
	Wait()
}

// TrackerObserver sends an analytics event for every response.
type TrackerObserver struct {
	tracker eventTracker
}

// NewTrackerObserver creates an observer with the default analytics tracker.
// Build metadata is read from the environment.
func NewTrackerObserver(envRepo env.Repository, logger log.Logger) TrackerObserver {
	p := analytics.Properties{
		"build_slug": envRepo.Get("BITRISE_BUILD_SLUG"),
		"app_slug":   envRepo.Get("BITRISE_APP_SLUG"),
		"workflow":   envRepo.Get("BITRISE_TRIGGERED_WORKFLOW_ID"),
	}
	return TrackerObserver{tracker: analytics.NewDefaultTracker(logger, p)}
}

// Observe ...
func (o TrackerObserver) Observe(req Request, resp Response, took time.Duration) {
	properties := analytics.Properties{
		"chunk_size":  req.Input.ChunkSize,
		"duration_ms": took.Milliseconds(),
	}

	switch resp.Type {
	case ResponseDone:
		properties["chunk_count"] = len(resp.Payload.Chunks)
		properties["total_size_bytes"] = resp.Payload.Chunks.TotalSize()
		o.tracker.Enqueue("filechunker_file_split", properties)
	case ResponseError:
		if resp.Payload.Error != nil {
			properties["failure_kind"] = string(resp.Payload.Error.Kind)
		}
		o.tracker.Enqueue("filechunker_file_failed", properties)
	}
}

// Wait blocks until queued events are sent.
func (o TrackerObserver) Wait() {
	o.tracker.Wait()
}
