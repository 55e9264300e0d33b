package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const cleanupInterval = 5 * time.Minute

// ErrStopped is returned by Submit once the pool has been stopped.
var ErrStopped = errors.New("job pool is stopped")

// Orchestrator owns the job store, the queue and the worker goroutines.
type Orchestrator struct {
	jobs    *Store
	queue   chan *Job
	worker  *Worker
	log     *slog.Logger
	workers int

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards stopped and the close of queue against in-flight sends.
	mu      sync.RWMutex
	stopped bool
}

// NewOrchestrator creates the pool. Call Start to launch it.
func NewOrchestrator(w *Worker, workers, queueSize int, ttl time.Duration, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewStore(ttl),
		queue:   make(chan *Job, queueSize),
		worker:  w,
		log:     log,
		workers: workers,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.workers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.worker.Process(workerCtx, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(cleanupInterval)
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

// Stop gracefully shuts down the pool. Later calls are no-ops.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing. After Stop the job is marked failed
// and ErrStopped is returned.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		job.SetStatus(StatusFailed, "stopped")
		job.AddError(ErrStopped.Error())
		return ErrStopped
	}
	select {
	case o.queue <- job:
		o.log.Debug("job queued", "job_id", job.ID, "filename", job.Filename)
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		job.AddError("job queue is full")
		return fmt.Errorf("job queue is full (%d)", cap(o.queue))
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// Completed returns the successfully extracted jobs, oldest first.
func (o *Orchestrator) Completed() []Snapshot {
	return o.jobs.Completed()
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Worker returns the shared worker for synchronous extraction.
func (o *Orchestrator) Worker() *Worker {
	return o.worker
}
