// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/okian/skillmatch/internal/adapters/mq/queue"
	workerpool "github.com/okian/skillmatch/internal/adapters/mq/worker"
	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/domain/dedupe"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/skills"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Default service configuration.
const (
	defaultParallelThreshold = 64
	defaultRankTimeout       = 2 * time.Second
	defaultQueueSize         = 1024
	defaultDedupeSize        = 50000
	defaultResultCapacity    = 10000
)

// Service implements the API dependencies for candidate ranking.
type Service struct {
	mu sync.RWMutex

	// Core components
	table   *skills.Table
	ranker  *ranking.Ranker
	jobs    *repository.MemoryStore
	deduper dedupe.Deduper
	queue   *jobqueue.InMemoryQueue
	pool    *workerpool.Pool

	// Configuration
	rankWorkers       int
	parallelThreshold int
	policy            ranking.Policy
	rankTimeout       time.Duration
	queueSize         int
	jobWorkers        int
	dedupeSize        int
	resultCapacity    int

	newID   func() string
	started bool
	logger  logger.Logger
}

// New constructs a Service. Synchronous ranking is usable right away; job
// operations need Start.
func New(opts ...Option) *Service {
	s := &Service{
		table:             skills.Empty(),
		rankWorkers:       runtime.GOMAXPROCS(0),
		parallelThreshold: defaultParallelThreshold,
		policy:            ranking.PolicyExclude,
		rankTimeout:       defaultRankTimeout,
		queueSize:         defaultQueueSize,
		jobWorkers:        runtime.NumCPU(),
		dedupeSize:        defaultDedupeSize,
		resultCapacity:    defaultResultCapacity,
		newID:             uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.ranker = ranking.New(s.table,
		ranking.WithWorkers(s.rankWorkers),
		ranking.WithParallelThreshold(s.parallelThreshold),
		ranking.WithPolicy(s.policy),
		ranking.WithLogger(s.logger.Named("ranking")),
	)
	metrics.UpdateSkillRelations(s.table.Len())

	return s
}

// Start builds the job pipeline and starts its workers. The workers keep
// running after ctx is canceled until Stop drains the queue. Calling Start
// on a running service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting ranking service...")

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = repository.NewMemoryStore(repository.WithCapacity(s.resultCapacity))
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.jobWorkers, s.queue, s.ranker, s.jobs,
		workerpool.WithJobTimeout(s.rankTimeout),
	)
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.Int("rank_workers", s.rankWorkers),
		logger.Int("job_workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("skill_relations", s.table.Len()),
		logger.String("policy", string(s.policy)),
	)
	return nil
}

// Stop closes the job queue and waits for the workers to drain it.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping ranking service...")
	err := s.pool.Shutdown(ctx)
	s.started = false
	if err != nil {
		return fmt.Errorf("stop worker pool: %w", err)
	}
	s.logger.Info(ctx, "ranking service stopped")
	return nil
}

// Rank scores and orders candidates synchronously, bounded by the rank
// timeout.
func (s *Service) Rank(ctx context.Context, req model.MatchRequest, candidates []model.Candidate) (model.RankedList, error) {
	if s.rankTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.rankTimeout)
		defer cancel()
	}
	return s.ranker.Rank(ctx, req, candidates)
}

// Submit queues a ranking job. The job id doubles as the idempotency key:
// a repeated id is acknowledged as a duplicate without queueing again. An
// empty id gets a generated one.
func (s *Service) Submit(ctx context.Context, job model.Job) (types.SubmitResponse, error) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return types.SubmitResponse{}, ErrNotStarted
	}
	if err := job.Request.Validate(); err != nil {
		return types.SubmitResponse{}, err
	}

	if job.ID == "" {
		job.ID = s.newID()
	}
	job.Request.ID = job.ID

	// The deduper can remember an id longer than the store keeps its
	// record. An evicted id is accepted again.
	if s.deduper.SeenAndRecord(ctx, job.ID) {
		if ack, ok := s.duplicate(ctx, job.ID); ok {
			return ack, nil
		}
		s.logger.Debug(ctx, "job record evicted, accepting id again", logger.String("job_id", job.ID))
	}

	job.SubmittedAt = time.Now()
	if err := s.jobs.Put(ctx, job.ID, job.SubmittedAt); err != nil {
		if errors.Is(err, repository.ErrExists) {
			if ack, ok := s.duplicate(ctx, job.ID); ok {
				return ack, nil
			}
		}
		s.deduper.Unrecord(ctx, job.ID)
		return types.SubmitResponse{}, fmt.Errorf("store job %s: %w", job.ID, err)
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.deduper.Unrecord(ctx, job.ID)
		s.jobs.Delete(ctx, job.ID)
		s.logger.Warn(ctx, "job rejected",
			logger.String("job_id", job.ID),
			logger.Error(err),
		)
		return types.SubmitResponse{}, fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}

	metrics.RecordJobSubmitted()
	s.logger.Debug(ctx, "job queued",
		logger.String("job_id", job.ID),
		logger.Int("candidates", len(job.Candidates)),
	)
	return types.SubmitResponse{JobID: job.ID, Status: types.JobQueued}, nil
}

// duplicate acknowledges a repeated id with its stored status. It reports
// false when the store no longer holds the job.
func (s *Service) duplicate(ctx context.Context, id string) (types.SubmitResponse, bool) {
	rec, err := s.jobs.Get(ctx, id)
	if err != nil {
		return types.SubmitResponse{}, false
	}
	metrics.RecordJobDuplicate()
	s.logger.Debug(ctx, "duplicate job", logger.String("job_id", id))
	return types.SubmitResponse{JobID: id, Status: string(rec.Status), Duplicate: true}, true
}

// Job returns the state of a submitted job and, once done, its result.
func (s *Service) Job(ctx context.Context, id string) (types.JobStatus, error) {
	s.mu.RLock()
	jobs := s.jobs
	s.mu.RUnlock()

	if jobs == nil {
		return types.JobStatus{}, ErrNotStarted
	}
	rec, err := jobs.Get(ctx, id)
	if err != nil {
		return types.JobStatus{}, err
	}

	st := types.JobStatus{
		JobID:       rec.JobID,
		Status:      string(rec.Status),
		SubmittedAt: rec.SubmittedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if rec.Result != nil {
		resp := types.FromRankedList(*rec.Result)
		st.Result = &resp
	}
	if rec.Err != nil {
		st.Error = rec.Err.Error()
	}
	return st, nil
}

// Related lists the relations configured for skill.
func (s *Service) Related(_ context.Context, skill string) types.RelatedSkills {
	rel := s.table.Related(skill)
	out := types.RelatedSkills{
		Skill:   string(model.NormalizeSkill(skill)),
		Related: make([]types.Relation, len(rel)),
	}
	for i, r := range rel {
		out.Related[i] = types.Relation{Skill: r.Skill, Credit: r.Credit}
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":           s.started,
		"policy":            string(s.policy),
		"rankWorkers":       s.rankWorkers,
		"parallelThreshold": s.parallelThreshold,
		"rankTimeoutMs":     s.rankTimeout.Milliseconds(),
		"skillRelations":    s.table.Len(),
		"queueSize":         s.queueSize,
		"dedupeSize":        s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["jobWorkers"] = s.pool.Size()
		stats["activeWorkers"] = s.pool.Active()
		stats["storedJobs"] = s.jobs.Count(ctx)
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}
