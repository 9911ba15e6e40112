package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/affigen/internal/casefile"
	"github.com/dgallion1/affigen/internal/doctree"
)

func TestCaseHash_Consistency(t *testing.T) {
	c := &casefile.CaseDetails{CaseNumber: "2025-0117"}
	h1 := CaseHash(KindPoseurBuyer, c)
	h2 := CaseHash(KindPoseurBuyer, &casefile.CaseDetails{CaseNumber: "2025-0117"})
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h1))
	}
}

func TestCaseHash_DifferentInputs(t *testing.T) {
	c := &casefile.CaseDetails{CaseNumber: "2025-0117"}
	if CaseHash(KindPoseurBuyer, c) == CaseHash(KindArrestingOfficer, c) {
		t.Error("expected kind to change the hash")
	}
	if CaseHash(KindPoseurBuyer, c) == CaseHash(KindPoseurBuyer, &casefile.CaseDetails{CaseNumber: "2025-0118"}) {
		t.Error("expected different hashes for different cases")
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("", &casefile.CaseDetails{}, nil)
	if job.Kind != KindPoseurBuyer {
		t.Errorf("expected default kind %q, got %q", KindPoseurBuyer, job.Kind)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if len(job.ID) != 36 {
		t.Errorf("expected uuid id, got %q", job.ID)
	}
	if NewJob("", &casefile.CaseDetails{}, nil).ID == job.ID {
		t.Error("expected distinct ids")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusGenerating, "generating body"},
		{StatusAssembling, "assembling affidavit"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_Fail(t *testing.T) {
	job := &Job{ID: "test-fail", Status: StatusGenerating, UpdatedAt: time.Now()}
	job.Fail(CodeTimeout, "deadline exceeded")
	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Code != CodeTimeout {
		t.Errorf("expected failed/%s, got %s/%s", CodeTimeout, snap.Status, snap.Code)
	}
	if len(snap.Errors) != 1 || snap.Errors[0] != "deadline exceeded" {
		t.Errorf("expected one error, got %v", snap.Errors)
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("attempt 1 failed")
	job.AddError("attempt 2 failed")

	snap := job.Snapshot()
	if len(snap.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Errors))
	}
	if snap.Errors[0] != "attempt 1 failed" {
		t.Errorf("expected first error %q, got %q", "attempt 1 failed", snap.Errors[0])
	}
}

func TestJob_IncrAttempts(t *testing.T) {
	job := &Job{ID: "incr-test", UpdatedAt: time.Now()}
	job.IncrAttempts()
	job.IncrAttempts()

	if snap := job.Snapshot(); snap.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", snap.Attempts)
	}
}

func TestJob_CompleteResultIsCopied(t *testing.T) {
	job := &Job{ID: "done", UpdatedAt: time.Now()}
	if job.Result() != nil {
		t.Error("expected nil result before completion")
	}
	job.Complete(doctree.Document{doctree.NewParagraph("x")}, "gemma3:4b", "done")

	got := job.Result()
	got[0].Children[0].Text = "changed"
	if job.Result()[0].Children[0].Text != "x" {
		t.Error("expected Result to return a copy")
	}
	snap := job.Snapshot()
	if snap.Status != StatusCompleted || snap.Model != "gemma3:4b" || len(snap.Document) != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if snap.Document != nil {
		t.Error("expected no document before completion")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_FindCompleted(t *testing.T) {
	store := NewJobStore(time.Hour)
	pending := &Job{ID: "a", CaseHash: "h", Status: StatusGenerating, UpdatedAt: time.Now()}
	done := &Job{ID: "b", CaseHash: "h", Status: StatusCompleted, UpdatedAt: time.Now()}
	store.Put(pending)
	store.Put(done)

	if got := store.FindCompleted("h", "a"); got != done {
		t.Errorf("expected completed job b, got %v", got)
	}
	if got := store.FindCompleted("h", "b"); got != nil {
		t.Errorf("expected excluded job skipped, got %v", got.ID)
	}
	if got := store.FindCompleted("other", ""); got != nil {
		t.Errorf("expected no match, got %v", got.ID)
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
