package repository

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/pkg/metrics"
)

const defaultCapacity = 10000

// MemoryStore is a bounded in-memory Store. Jobs are kept in submission
// order and the oldest is evicted once capacity is reached.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]*list.Element // value: *Record
	order    *list.List               // front = oldest
	capacity int
	now      func() time.Time
}

// NewMemoryStore constructs a job store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:     make(map[string]*list.Element),
		order:    list.New(),
		capacity: defaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateJobResults(0)
	return s
}

// Put implements Store.Put.
func (s *MemoryStore) Put(_ context.Context, jobID string, submittedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[jobID]; ok {
		return fmt.Errorf("%w: %s", ErrExists, jobID)
	}
	for s.order.Len() >= s.capacity {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.byID, oldest.Value.(*Record).JobID)
	}
	rec := &Record{
		JobID:       jobID,
		Status:      StatusQueued,
		SubmittedAt: submittedAt,
		UpdatedAt:   s.now(),
	}
	s.byID[jobID] = s.order.PushBack(rec)
	metrics.UpdateJobResults(s.order.Len())
	return nil
}

// MarkRunning implements Store.MarkRunning.
func (s *MemoryStore) MarkRunning(_ context.Context, jobID string) error {
	return s.transition(jobID, func(r *Record) error {
		if r.Status != StatusQueued {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, StatusRunning)
		}
		r.Status = StatusRunning
		return nil
	})
}

// Complete implements Store.Complete.
func (s *MemoryStore) Complete(_ context.Context, jobID string, l model.RankedList) error {
	return s.transition(jobID, func(r *Record) error {
		if r.Status != StatusRunning {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, StatusDone)
		}
		r.Status = StatusDone
		r.Result = &l
		return nil
	})
}

// Fail implements Store.Fail.
func (s *MemoryStore) Fail(_ context.Context, jobID string, cause error) error {
	return s.transition(jobID, func(r *Record) error {
		if r.Status.Finished() {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, StatusFailed)
		}
		r.Status = StatusFailed
		r.Err = cause
		return nil
	})
}

func (s *MemoryStore) transition(jobID string, apply func(*Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.byID[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	rec := el.Value.(*Record)
	if err := apply(rec); err != nil {
		return err
	}
	rec.UpdatedAt = s.now()
	return nil
}

// Get implements Store.Get. The returned record is a copy.
func (s *MemoryStore) Get(_ context.Context, jobID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.byID[jobID]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return *el.Value.(*Record), nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.byID[jobID]; ok {
		s.order.Remove(el)
		delete(s.byID, jobID)
		metrics.UpdateJobResults(s.order.Len())
	}
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}
