package worker

import (
	"sync"
	"time"

	"github.com/VividCortex/ewma"
)

// Stats tracks how long the worker spends on requests.
type Stats struct {
	sum      time.Duration
	finished int64
	failed   int64
	avg      ewma.MovingAverage
	mu       sync.Mutex
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{avg: ewma.NewMovingAverage()}
}

// Update records a handled request.
func (s *Stats) Update(d time.Duration, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sum += d
	s.finished++
	if failed {
		s.failed++
	}
	s.avg.Add(float64(d))
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Finished      int64
	Failed        int64
	TotalDuration time.Duration
	Average       time.Duration
	// MovingAverage weighs recent requests more, see github.com/VividCortex/ewma.
	MovingAverage time.Duration
}

// Snapshot returns the current values.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Finished:      s.finished,
		Failed:        s.failed,
		TotalDuration: s.sum,
		MovingAverage: time.Duration(s.avg.Value()),
	}
	if s.finished > 0 {
		snap.Average = s.sum / time.Duration(s.finished)
	}
	return snap
}
