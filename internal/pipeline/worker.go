package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/affigen/internal/assembly"
	"github.com/dgallion1/affigen/internal/doctree"
	"github.com/dgallion1/affigen/internal/generate"
)

// Worker processes a single generation job.
type Worker struct {
	gen     generate.Generator
	stats   *generate.LLMStats
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewWorker(gen generate.Generator, stats *generate.LLMStats, log *slog.Logger, timeout time.Duration) *Worker {
	return &Worker{
		gen:     gen,
		stats:   stats,
		log:     log,
		timeout: timeout,
		now:     time.Now,
	}
}

// Process generates the body, parses it and assembles the affidavit.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind, "case_hash", job.CaseHash)

	// Phase 1: Generate and parse, retrying transient failures.
	job.SetStatus(StatusGenerating, "generating")
	body, model, err := w.generate(ctx, job, log)
	if err != nil {
		code := FailureCode(err)
		log.Error("generation failed", "code", code, "error", err)
		job.Fail(code, err.Error())
		return
	}
	log.Info("body generated", "blocks", len(body), "model", model)

	// Phase 2: Assemble.
	job.SetStatus(StatusAssembling, "assembling")
	doc, err := w.assemble(job, body)
	if err != nil {
		log.Error("assembly failed", "error", err)
		job.Fail(CodeFailed, fmt.Sprintf("assemble: %s", err))
		return
	}

	job.Complete(doc, model, "done")
	log.Info("affidavit assembled", "blocks", len(doc))
}

func (w *Worker) generate(ctx context.Context, job *Job, log *slog.Logger) (doctree.Document, string, error) {
	var lastErr error
	for attempt := range MaxRetries {
		job.IncrAttempts()
		body, model, err := w.attempt(ctx, job)
		if err == nil {
			return body, model, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable generation error", "attempt", attempt, "error", err)
		job.AddError(fmt.Sprintf("attempt %d: %s", attempt+1, err))
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, "", ctx.Err()
		}
	}
	return nil, "", lastErr
}

func (w *Worker) attempt(ctx context.Context, job *Job) (doctree.Document, string, error) {
	callCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := w.gen.Generate(callCtx, generate.Request{Case: job.Case()})
	if err != nil {
		w.stats.Record(generate.Call{Kind: job.Kind, Model: w.gen.Model(), DurationMs: time.Since(start).Milliseconds(), Failure: FailureCode(err)})
		return nil, "", err
	}
	d := resp.Duration
	if d <= 0 {
		d = time.Since(start)
	}
	call := generate.Call{Kind: job.Kind, Model: resp.Model, DurationMs: d.Milliseconds()}

	// A malformed reply is not retried: the same prompt tends to fail the
	// same way.
	body, err := generate.ParseBody(resp.Raw)
	if err != nil {
		call.Failure = FailureCode(err)
		w.stats.Record(call)
		return nil, "", err
	}
	w.stats.Record(call)
	return body, resp.Model, nil
}

func (w *Worker) assemble(job *Job, body doctree.Document) (doctree.Document, error) {
	now := w.now()
	switch job.Kind {
	case KindPoseurBuyer:
		return assembly.PoseurBuyerAffidavit(job.Case(), job.Station(), body, now), nil
	case KindArrestingOfficer:
		return assembly.ArrestingOfficerAffidavit(job.Case(), body, now)
	default:
		return nil, fmt.Errorf("unknown affidavit kind %q", job.Kind)
	}
}
