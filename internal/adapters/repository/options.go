package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacity sets how many jobs are retained before the oldest is evicted.
func WithCapacity(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
