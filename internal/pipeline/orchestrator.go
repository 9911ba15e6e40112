package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/affigen/internal/config"
	"github.com/dgallion1/affigen/internal/generate"
)

// Orchestrator manages the affidavit generation queue.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	gen   generate.Generator
	stats *generate.LLMStats
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, gen generate.Generator, stats *generate.LLMStats, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		gen:   gen,
		stats: stats,
		log:   log,
		cfg:   cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.gen, o.stats, o.log, o.cfg.GenerateTimeout)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing. A job whose case hash matches a
// completed job is answered from that job without a generation call.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	if prev := o.jobs.FindCompleted(job.CaseHash, job.ID); prev != nil {
		snap := prev.Snapshot()
		job.Complete(prev.Result(), snap.Model, "cached")
		o.log.Info("reused generated affidavit", "job_id", job.ID, "source_job_id", prev.ID)
		return nil
	}
	select {
	case o.queue <- job:
		return nil
	default:
		job.Fail(CodeQueueFull, "")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the generation latency tracker.
func (o *Orchestrator) Stats() *generate.LLMStats {
	return o.stats
}

// Model names the model jobs are generated with.
func (o *Orchestrator) Model() string {
	return o.gen.Model()
}
