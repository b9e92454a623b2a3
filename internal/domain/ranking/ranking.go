// Package ranking scores candidate lists against a request and orders them.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/skillmatch/internal/domain/matching"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/skills"
	"github.com/okian/skillmatch/internal/domain/trust"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Default ranking configuration constants.
const (
	defaultParallelThreshold = 64
)

// Ranker combines match and trust scores into an ordered list.
// It holds only immutable configuration and is safe for concurrent use.
type Ranker struct {
	match *matching.Scorer
	trust *trust.Scorer

	workers           int
	parallelThreshold int
	policy            Policy
	log               logger.Logger
}

// New creates a Ranker over the given relevance table.
func New(table *skills.Table, opts ...Option) *Ranker {
	r := &Ranker{
		match:             matching.NewScorer(table),
		trust:             trust.NewScorer(),
		workers:           runtime.GOMAXPROCS(0),
		parallelThreshold: defaultParallelThreshold,
		policy:            PolicyExclude,
		log:               logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the configured invalid-candidate policy.
func (r *Ranker) Policy() Policy { return r.policy }

type outcome struct {
	result   model.ScoreResult
	warnings []string
	err      error
}

// Rank scores every candidate and returns them ordered by match score desc,
// trust score desc, then candidate id asc. An invalid request fails the call.
// Invalid candidates are excluded or abort the call depending on the policy.
func (r *Ranker) Rank(ctx context.Context, req model.MatchRequest, candidates []model.Candidate) (model.RankedList, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		metrics.RecordRankCall(metrics.OutcomeInvalid, sinceMs(start))
		return model.RankedList{}, err
	}

	outcomes, err := r.scoreAll(ctx, req, candidates)
	if err != nil {
		metrics.RecordRankCall(metrics.OutcomeCancelled, sinceMs(start))
		return model.RankedList{}, err
	}

	list := model.RankedList{
		RequestID: req.ID,
		Results:   make([]model.ScoreResult, 0, len(candidates)),
	}
	for i, o := range outcomes {
		id := candidates[i].ID
		if o.err != nil {
			if r.policy == PolicyAbort {
				metrics.RecordRankCall(metrics.OutcomeAborted, sinceMs(start))
				r.log.Warn(ctx, "ranking aborted by invalid candidate",
					logger.String("request_id", req.ID),
					logger.String("candidate_id", id),
					logger.Error(o.err))
				return model.RankedList{}, &CandidateError{CandidateID: id, Index: i, Err: o.err}
			}
			metrics.RecordCandidateRejected(rejectReason(o.err))
			r.log.Warn(ctx, "candidate excluded",
				logger.String("request_id", req.ID),
				logger.String("candidate_id", id),
				logger.Error(o.err))
			list.Rejected = append(list.Rejected, model.Rejection{CandidateID: id, Err: o.err})
			continue
		}
		for _, w := range o.warnings {
			metrics.RecordScoringWarning()
			r.log.Warn(ctx, "candidate scored with warning",
				logger.String("request_id", req.ID),
				logger.String("candidate_id", id),
				logger.String("warning", w))
			list.Warnings = append(list.Warnings, model.Warning{CandidateID: id, Message: w})
		}
		metrics.RecordCandidateScored(o.result.MatchScore, o.result.TrustScore)
		list.Results = append(list.Results, o.result)
	}

	Sort(list.Results)

	metrics.RecordRankCall(metrics.OutcomeOK, sinceMs(start))
	r.log.Debug(ctx, "ranked candidates",
		logger.String("request_id", req.ID),
		logger.Int("candidates", len(candidates)),
		logger.Int("ranked", len(list.Results)),
		logger.Int("rejected", len(list.Rejected)),
		logger.Duration("took", time.Since(start)))
	return list, nil
}

// Sort orders results by match desc, trust desc, candidate id asc.
func Sort(results []model.ScoreResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.TrustScore != b.TrustScore {
			return a.TrustScore > b.TrustScore
		}
		return a.CandidateID < b.CandidateID
	})
}

// scoreAll returns one outcome per candidate, in input order.
func (r *Ranker) scoreAll(ctx context.Context, req model.MatchRequest, candidates []model.Candidate) ([]outcome, error) {
	outcomes := make([]outcome, len(candidates))

	if len(candidates) < r.parallelThreshold || r.workers <= 1 {
		for i := range candidates {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("ranking cancelled: %w", err)
			}
			outcomes[i] = r.scoreOne(req, candidates[i])
		}
		return outcomes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.scoreOne(req, candidates[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ranking cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ranking cancelled: %w", err)
	}
	return outcomes, nil
}

func (r *Ranker) scoreOne(req model.MatchRequest, c model.Candidate) outcome {
	if strings.TrimSpace(c.ID) == "" {
		return outcome{err: model.NewValidationError(model.ErrInvalidCandidate, "id", "candidate id must not be empty")}
	}
	t, err := r.trust.Score(c.Trust)
	if err != nil {
		return outcome{err: err}
	}
	m, err := r.match.Score(req, c)
	if err != nil {
		return outcome{err: err}
	}
	return outcome{
		result:   model.ScoreResult{CandidateID: c.ID, MatchScore: m, TrustScore: t.Score},
		warnings: t.Warnings,
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidTrustProfile):
		return "invalid_trust_profile"
	case errors.Is(err, model.ErrInvalidCandidate):
		return "invalid_candidate"
	default:
		return "other"
	}
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
