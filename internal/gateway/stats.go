package gateway

import (
	"sync/atomic"
	"time"
)

// stats tracks gateway-level counters with atomics, serialized into the
// /status response. The Prometheus registry carries the engine metrics;
// these are the gateway's own request-level numbers.
type stats struct {
	runs        atomic.Int64
	runErrors   atomic.Int64
	totalTokens atomic.Int64
	totalRunNs  atomic.Int64
}

func (s *stats) recordRun(tokens int, d time.Duration, failed bool) {
	s.runs.Add(1)
	s.totalTokens.Add(int64(tokens))
	s.totalRunNs.Add(int64(d))
	if failed {
		s.runErrors.Add(1)
	}
}

// snapshot returns a consistent point-in-time view of the counters.
func (s *stats) snapshot() statsSnapshot {
	runs := s.runs.Load()
	snap := statsSnapshot{
		Runs:        runs,
		RunErrors:   s.runErrors.Load(),
		TotalTokens: s.totalTokens.Load(),
	}
	if runs > 0 {
		snap.AvgRunMillis = time.Duration(s.totalRunNs.Load()/runs) / time.Millisecond
	}
	return snap
}

type statsSnapshot struct {
	Runs         int64         `json:"runs"`
	RunErrors    int64         `json:"run_errors"`
	TotalTokens  int64         `json:"total_tokens"`
	AvgRunMillis time.Duration `json:"avg_run_ms"`
}
