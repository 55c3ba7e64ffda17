package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"dealflow-backend/internal/shared/metrics"
	"dealflow-backend/internal/shared/telemetry"
)

// ErrSaturated means the job queue is at capacity; the caller should retry
// the submission later.
var ErrSaturated = errors.New("scheduler saturated")

// ErrStopped means the scheduler is not accepting jobs.
var ErrStopped = errors.New("scheduler stopped")

// Job is one unit of pipeline work.
type Job struct {
	DocumentID string
	RequestID  string
	EnqueuedAt time.Time
}

// Processor runs the pipeline for one document. Implementations must be
// safe for concurrent calls, including duplicate jobs for one document:
// the queue does not dedupe, so a boot-recovery sweep may overlap a live
// job and the processor's guarded writes must make the overlap a no-op.
type Processor interface {
	ProcessDocument(ctx context.Context, documentID string) error
}

type inflight struct {
	cancel context.CancelFunc
}

// Scheduler owns the bounded job queue and the worker pool. The queue is
// the single piece of shared mutable state; enqueue and dequeue go through
// the channel, so no two workers ever pick up the same job.
type Scheduler struct {
	queue     chan Job
	workers   int
	processor Processor

	mu      sync.Mutex
	cancels map[string]*inflight

	running atomic.Bool
	busy    atomic.Int64
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// New builds a scheduler with the given worker count and queue depth.
func New(workers, depth int, processor Processor) *Scheduler {
	if workers <= 0 {
		workers = 10
	}
	if depth <= 0 {
		depth = 100
	}
	return &Scheduler{
		queue:     make(chan Job, depth),
		workers:   workers,
		processor: processor,
		cancels:   make(map[string]*inflight),
	}
}

// Start launches the worker pool. Workers exit when ctx is cancelled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go func(id int) {
			defer s.wg.Done()
			s.run(runCtx, id)
		}(i)
	}
	telemetry.Info("scheduler started", map[string]any{"workers": s.workers, "queue_capacity": cap(s.queue)})
}

// Stop refuses new jobs, cancels the workers and waits for in-flight jobs
// to observe the cancellation, up to ctx's deadline.
func (s *Scheduler) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue submits a job without blocking. A full queue returns ErrSaturated
// so the transport layer can tell callers to back off.
func (s *Scheduler) Enqueue(job Job) error {
	if !s.running.Load() {
		return ErrStopped
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	select {
	case s.queue <- job:
		metrics.QueueDepth.Set(float64(len(s.queue)))
		return nil
	default:
		return ErrSaturated
	}
}

// Cancel fires the cancellation signal for a document's in-flight job.
// It reports whether a running job was signalled; queued jobs are handled
// by the processor observing the document's terminal status.
func (s *Scheduler) Cancel(documentID string) bool {
	s.mu.Lock()
	entry, ok := s.cancels[documentID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	entry.cancel()
	return true
}

// Snapshot reports queue and worker occupancy for the status endpoint.
type Snapshot struct {
	QueueDepth    int   `json:"queue_depth"`
	QueueCapacity int   `json:"queue_capacity"`
	Workers       int   `json:"workers"`
	Busy          int64 `json:"busy"`
	Running       bool  `json:"running"`
}

// Snapshot returns the current occupancy counters.
func (s *Scheduler) Snapshot() Snapshot {
	return Snapshot{
		QueueDepth:    len(s.queue),
		QueueCapacity: cap(s.queue),
		Workers:       s.workers,
		Busy:          s.busy.Load(),
		Running:       s.running.Load(),
	}
}

func (s *Scheduler) run(ctx context.Context, worker int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.queue:
			metrics.QueueDepth.Set(float64(len(s.queue)))
			s.process(ctx, worker, job)
		}
	}
}

func (s *Scheduler) process(parent context.Context, worker int, job Job) {
	jobCtx, cancel := context.WithCancel(parent)
	defer cancel()

	entry := &inflight{cancel: cancel}
	s.mu.Lock()
	s.cancels[job.DocumentID] = entry
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.cancels[job.DocumentID] == entry {
			delete(s.cancels, job.DocumentID)
		}
		s.mu.Unlock()
	}()

	s.busy.Add(1)
	metrics.WorkersBusy.Set(float64(s.busy.Load()))
	defer func() {
		s.busy.Add(-1)
		metrics.WorkersBusy.Set(float64(s.busy.Load()))
	}()

	started := time.Now()
	err := s.processor.ProcessDocument(jobCtx, job.DocumentID)
	fields := map[string]any{
		"document_id": job.DocumentID,
		"request_id":  job.RequestID,
		"worker":      worker,
		"wait_ms":     time.Since(job.EnqueuedAt).Milliseconds() - time.Since(started).Milliseconds(),
		"duration_ms": time.Since(started).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
		telemetry.Error("job finished with error", fields)
		return
	}
	telemetry.Info("job finished", fields)
}
