package ner

import (
	"slices"
	"sync"
	"time"
)

type latencySample struct {
	at time.Time
	ms int64
}

// StatsSnapshot aggregates the recognizer calls seen in the stats window.
type StatsSnapshot struct {
	Calls    int     `json:"calls" yaml:"calls"`
	Failures int     `json:"failures" yaml:"failures"`
	MinMs    int64   `json:"min_ms" yaml:"min_ms"`
	MaxMs    int64   `json:"max_ms" yaml:"max_ms"`
	AvgMs    float64 `json:"avg_ms" yaml:"avg_ms"`
	P50Ms    float64 `json:"p50_ms" yaml:"p50_ms"`
	P95Ms    float64 `json:"p95_ms" yaml:"p95_ms"`
	P99Ms    float64 `json:"p99_ms" yaml:"p99_ms"`
}

// InferenceStats keeps recognizer latencies for a rolling window.
// Safe for concurrent use.
type InferenceStats struct {
	mu       sync.Mutex
	samples  []latencySample
	failures []time.Time
	window   time.Duration
}

func NewInferenceStats(window time.Duration) *InferenceStats {
	if window <= 0 {
		window = time.Hour
	}
	return &InferenceStats{
		samples: make([]latencySample, 0, 256),
		window:  window,
	}
}

// Record adds one completed call.
func (s *InferenceStats) Record(ms int64) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, latencySample{at: now, ms: max(ms, 0)})
}

// RecordFailure counts a call that never produced a response.
func (s *InferenceStats) RecordFailure() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.failures = append(s.failures, now)
}

func (s *InferenceStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	snap := StatsSnapshot{
		Calls:    len(s.samples),
		Failures: len(s.failures),
	}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, len(s.samples))
	var sum int64
	for i, sm := range s.samples {
		values[i] = sm.ms
		sum += sm.ms
	}
	slices.Sort(values)

	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *InferenceStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.samples = slices.DeleteFunc(s.samples, func(sm latencySample) bool {
		return sm.at.Before(cutoff)
	})
	s.failures = slices.DeleteFunc(s.failures, func(at time.Time) bool {
		return at.Before(cutoff)
	})
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}

	rank := float64(len(sorted)-1) * pct / 100.0
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo := float64(sorted[lower])
	hi := float64(sorted[lower+1])
	return lo + (hi-lo)*(rank-float64(lower))
}
