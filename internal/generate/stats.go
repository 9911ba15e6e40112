package generate

import (
	"slices"
	"sync"
	"time"
)

// Call is one finished generation call as seen by the job worker.
type Call struct {
	// Kind is the affidavit kind the body was requested for.
	Kind       string
	Model      string
	DurationMs int64
	// Failure is the job failure code, empty when a usable body came back.
	Failure string
}

type call struct {
	Call
	at time.Time
}

// KindStats aggregates the calls made for one affidavit kind.
type KindStats struct {
	Calls  int     `json:"calls"`
	Failed int     `json:"failed"`
	AvgMs  float64 `json:"avg_ms"`
}

// StatsSnapshot is a point-in-time view of recent generation calls.
// Latency figures cover successful calls only.
type StatsSnapshot struct {
	Count  int     `json:"count"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
	Errors int     `json:"errors"`

	ByKind   map[string]KindStats `json:"by_kind"`
	ByModel  map[string]int       `json:"by_model"`
	Failures map[string]int       `json:"failures"`
}

// LLMStats keeps the generation calls of a rolling window.
type LLMStats struct {
	mu     sync.Mutex
	calls  []call
	maxAge time.Duration
	now    func() time.Time
}

// NewLLMStats keeps calls for maxAge, one hour when maxAge is not positive.
func NewLLMStats(maxAge time.Duration) *LLMStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &LLMStats{
		calls:  make([]call, 0, 256),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Record adds one call. Negative durations count as zero.
func (s *LLMStats) Record(c Call) {
	c.DurationMs = max(c.DurationMs, 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.calls = append(s.calls, call{Call: c, at: now})
}

func (s *LLMStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())

	snap := StatsSnapshot{
		ByKind:   map[string]KindStats{},
		ByModel:  map[string]int{},
		Failures: map[string]int{},
	}
	kindTotals := map[string]int64{}
	var values []int64
	var sum int64

	for _, c := range s.calls {
		ks := snap.ByKind[c.Kind]
		ks.Calls++
		if c.Failure != "" {
			ks.Failed++
			snap.Errors++
			snap.Failures[c.Failure]++
			snap.ByKind[c.Kind] = ks
			continue
		}
		snap.ByKind[c.Kind] = ks
		kindTotals[c.Kind] += c.DurationMs
		if c.Model != "" {
			snap.ByModel[c.Model]++
		}
		values = append(values, c.DurationMs)
		sum += c.DurationMs
	}

	for kind, ks := range snap.ByKind {
		if n := ks.Calls - ks.Failed; n > 0 {
			ks.AvgMs = float64(kindTotals[kind]) / float64(n)
			snap.ByKind[kind] = ks
		}
	}

	if len(values) == 0 {
		return snap
	}
	slices.Sort(values)
	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *LLMStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	s.calls = slices.DeleteFunc(s.calls, func(c call) bool {
		return c.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(rank-float64(lower))
}
