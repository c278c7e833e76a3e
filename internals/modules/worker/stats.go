package worker

import "sync/atomic"

// Stats aggregates check outcomes across all workers of a process. A nil
// *Stats is a no-op sink.
type Stats struct {
	totalChecks atomic.Int64
	successes   atomic.Int64
	failures    atomic.Int64
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) record(success bool) {
	if s == nil {
		return
	}
	s.totalChecks.Add(1)
	if success {
		s.successes.Add(1)
	} else {
		s.failures.Add(1)
	}
}

func (s *Stats) Snapshot() (total, successes, failures int64) {
	if s == nil {
		return 0, 0, 0
	}
	return s.totalChecks.Load(), s.successes.Load(), s.failures.Load()
}
