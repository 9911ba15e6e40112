package generate

import (
	"testing"
	"time"
)

func success(kind string, ms int64) Call {
	return Call{Kind: kind, Model: "gemma3:4b", DurationMs: ms}
}

func TestLLMStatsSnapshotPercentiles(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(success("poseur-buyer", ms))
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got %d %d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 || snap.P50Ms != 300 {
		t.Fatalf("expected avg=p50=300, got %f %f", snap.AvgMs, snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestLLMStatsPrunesExpiredCalls(t *testing.T) {
	clock := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	stats := NewLLMStats(time.Minute)
	stats.now = func() time.Time { return clock }

	stats.Record(success("poseur-buyer", 100))
	stats.Record(Call{Kind: "poseur-buyer", Failure: "timeout"})
	clock = clock.Add(2 * time.Minute)

	snap := stats.Snapshot()
	if snap.Count != 0 || snap.Errors != 0 || len(snap.ByKind) != 0 {
		t.Fatalf("expected empty window after prune, got %+v", snap)
	}

	stats.Record(success("poseur-buyer", 200))
	snap = stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected one 200ms call, got %+v", snap)
	}
}

func TestLLMStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(success("poseur-buyer", -10))
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 0 {
		t.Fatalf("expected one clamped call, got %+v", snap)
	}
}

func TestLLMStatsBreakdown(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(success("poseur-buyer", 100))
	stats.Record(success("poseur-buyer", 300))
	stats.Record(Call{Kind: "poseur-buyer", Model: "gemma3:4b", DurationMs: 900, Failure: "invalid_output"})
	stats.Record(Call{Kind: "arresting-officer", Model: "claude", DurationMs: 50})
	stats.Record(Call{Kind: "arresting-officer", Failure: "unavailable"})

	snap := stats.Snapshot()
	if snap.Count != 3 || snap.Errors != 2 {
		t.Fatalf("expected 3 ok and 2 failed, got %d %d", snap.Count, snap.Errors)
	}
	if snap.MaxMs != 300 {
		t.Errorf("expected failed calls excluded from latency, got max %d", snap.MaxMs)
	}

	pb := snap.ByKind["poseur-buyer"]
	if pb.Calls != 3 || pb.Failed != 1 || pb.AvgMs != 200 {
		t.Errorf("unexpected poseur-buyer stats %+v", pb)
	}
	ao := snap.ByKind["arresting-officer"]
	if ao.Calls != 2 || ao.Failed != 1 || ao.AvgMs != 50 {
		t.Errorf("unexpected arresting-officer stats %+v", ao)
	}

	if snap.ByModel["gemma3:4b"] != 2 || snap.ByModel["claude"] != 1 {
		t.Errorf("unexpected model counts %v", snap.ByModel)
	}
	if snap.Failures["invalid_output"] != 1 || snap.Failures["unavailable"] != 1 {
		t.Errorf("unexpected failure codes %v", snap.Failures)
	}
}
