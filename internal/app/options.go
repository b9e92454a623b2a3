package service

import (
	"time"

	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/skills"
	"github.com/okian/skillmatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSkillTable sets the relevance table used for related-skill credit.
func WithSkillTable(t *skills.Table) Option {
	return func(s *Service) {
		if t != nil {
			s.table = t
		}
	}
}

// WithRankWorkers sets the per-call scoring parallelism.
func WithRankWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.rankWorkers = n
		}
	}
}

// WithParallelThreshold sets the candidate count at which scoring fans out.
func WithParallelThreshold(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelThreshold = n
		}
	}
}

// WithPolicy sets how invalid candidates are handled.
func WithPolicy(p ranking.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithRankTimeout bounds every ranking call. Zero disables the bound.
func WithRankTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.rankTimeout = d
		}
	}
}

// WithQueueSize sets the capacity of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithJobWorkers sets the number of job worker goroutines.
func WithJobWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.jobWorkers = count
		}
	}
}

// WithDedupeSize sets how many job ids are remembered for idempotency.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithResultCapacity sets how many job records are retained.
func WithResultCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.resultCapacity = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func withIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}
