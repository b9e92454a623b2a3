// Package worker runs queued ranking jobs and records their outcome.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/skillmatch/internal/adapters/mq/queue"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Ranker scores and orders the candidates of a job.
type Ranker interface {
	Rank(ctx context.Context, req model.MatchRequest, candidates []model.Candidate) (model.RankedList, error)
}

// Recorder stores job state transitions.
type Recorder interface {
	MarkRunning(ctx context.Context, jobID string) error
	Complete(ctx context.Context, jobID string, list model.RankedList) error
	Fail(ctx context.Context, jobID string, cause error) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing jobs.
type InMemoryWorker struct {
	queue    Queue
	ranker   Ranker
	recorder Recorder
	name     string
	timeout  time.Duration // per-job ranking deadline, 0 = none
	active   *atomic.Int64 // shared busy counter, nil when standalone

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, ranker Ranker, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		ranker:   ranker,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.String("job_id", job.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// process ranks one job. Ranking failures are recorded on the job and are
// not returned; only bookkeeping errors are.
func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	metrics.RecordQueueDequeue()
	if !job.SubmittedAt.IsZero() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(job.SubmittedAt).Milliseconds()))
	}

	if w.active != nil {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
		defer func() { metrics.UpdateWorkerActiveCount(int(w.active.Add(-1))) }()
	}

	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.recorder.MarkRunning(ctx, job.ID); err != nil {
		w.recordError("state_error")
		return fmt.Errorf("mark job %s running: %w", job.ID, err)
	}

	rankCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		rankCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	list, err := w.ranker.Rank(rankCtx, job.Request, job.Candidates)
	if err != nil {
		metrics.RecordJobFailed()
		kind := "ranking_error"
		if errors.Is(err, context.DeadlineExceeded) {
			kind = "timeout"
		}
		w.recordError(kind)
		w.logger.Warn(ctx, "ranking job failed",
			logger.String("job_id", job.ID),
			logger.Error(err),
		)
		if ferr := w.recorder.Fail(ctx, job.ID, err); ferr != nil {
			return fmt.Errorf("record failure of job %s: %w", job.ID, ferr)
		}
		return nil
	}

	if list.RequestID == "" {
		list.RequestID = job.ID
	}
	if err := w.recorder.Complete(ctx, job.ID, list); err != nil {
		w.recordError("state_error")
		return fmt.Errorf("complete job %s: %w", job.ID, err)
	}
	metrics.RecordJobCompleted()
	w.logger.Debug(ctx, "ranking job done",
		logger.String("job_id", job.ID),
		logger.Int("ranked", len(list.Results)),
		logger.Int("rejected", len(list.Rejected)),
	)
	return nil
}

func (w *InMemoryWorker) recordError(kind string) {
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", kind)
	metrics.RecordErrorByType(kind, "high")
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	active  atomic.Int64
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one defaults
// to twice the CPU count.
func NewPool(workerCount int, q Queue, ranker Ranker, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		workerOpts = append(workerOpts, withActiveCounter(&p.active))
		p.workers[i] = NewInMemoryWorker(q, ranker, recorder, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return p
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int { return len(p.workers) }

// Active returns the number of workers currently ranking a job.
func (p *Pool) Active() int { return int(p.active.Load()) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue, lets workers drain it, and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut++
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not stop: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
