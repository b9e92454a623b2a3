package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/skillmatch/internal/domain/model"
)

func job(id string) Job {
	return model.Job{
		ID:          id,
		Request:     model.MatchRequest{RequiredSkills: []string{"go"}},
		SubmittedAt: time.Now(),
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if c := q.Cap(); c != 2 {
		t.Errorf("expected capacity 2, got %d", c)
	}

	if err := q.Enqueue(ctx, job("job1")); err != nil {
		t.Fatalf("expected enqueue to succeed: %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ID != "job1" {
		t.Errorf("expected job1, got %v", got.ID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for _, id := range []string{"job1", "job2"} {
		if err := q.Enqueue(ctx, job(id)); err != nil {
			t.Fatalf("expected enqueue of %s to succeed: %v", id, err)
		}
	}

	if err := q.Enqueue(ctx, job("job3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, job("job1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if l := q.Len(context.Background()); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_FIFO(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	for i := range 10 {
		if err := q.Enqueue(ctx, job(fmt.Sprintf("job-%d", i))); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	ch := q.Dequeue(ctx)
	for i := range 10 {
		if got := (<-ch).ID; got != fmt.Sprintf("job-%d", i) {
			t.Fatalf("expected job-%d, got %s", i, got)
		}
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()
	const producers, perProducer = 10, 100

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range perProducer {
				if err := q.Enqueue(ctx, job(fmt.Sprintf("job-%d-%d", p, j))); err != nil {
					t.Errorf("enqueue failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if l := q.Len(ctx); l != producers*perProducer {
		t.Fatalf("expected %d queued jobs, got %d", producers*perProducer, l)
	}

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	seen := make(map[string]bool)
	for j := range q.Dequeue(ctx) {
		if seen[j.ID] {
			t.Fatalf("job %s dequeued twice", j.ID)
		}
		seen[j.ID] = true
	}
	if len(seen) != producers*perProducer {
		t.Errorf("expected %d distinct jobs, got %d", producers*perProducer, len(seen))
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if err := q.Enqueue(ctx, job("pending")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if err := q.Enqueue(ctx, job("late")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// queued jobs survive Close and the channel ends afterwards
	got, ok := <-q.Dequeue(ctx)
	if !ok || got.ID != "pending" {
		t.Errorf("expected pending job after close, got %v (ok=%v)", got.ID, ok)
	}
	if _, ok := <-q.Dequeue(ctx); ok {
		t.Error("expected closed channel after draining")
	}
}
