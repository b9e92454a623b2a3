// Package trust computes a candidate's trust score from profile attributes.
//
// The score is a fixed weighted blend of five sub-scores, each in [0,100]:
//
//	verification   30%  100 if verified, else 50
//	rating         25%  rating / 5 * 100
//	completion     20%  100 if any project was completed, else 0
//	responsiveness 15%  bucket lookup (100, 90, 75, 60, 40)
//	experience     10%  min(years / 10, 1) * 100
//
// Weights are constants so scores stay comparable across candidates.
package trust

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/okian/skillmatch/internal/domain/model"
)

// Weights in percent; they sum to 100.
const (
	weightVerification   = 30
	weightRating         = 25
	weightCompletion     = 20
	weightResponsiveness = 15
	weightExperience     = 10
)

// Sub-score constants.
const (
	verifiedScore     = 100
	unverifiedScore   = 50
	maxRating         = 5.0
	ratingToPercent   = 100 / maxRating
	experienceCapYear = 10.0
	yearToPercent     = 100 / experienceCapYear
	completedScore    = 100
	maxScore          = 100
)

var responsiveness = map[model.ResponseBucket]int{
	model.BucketImmediate:        100,
	model.BucketWithinOneHour:    90,
	model.BucketWithinThreeHours: 75,
	model.BucketWithinOneDay:     60,
	model.BucketSlower:           40,
}

// SubScores holds the normalized components of a trust score.
type SubScores struct {
	Verification   float64
	Rating         float64
	Completion     float64
	Responsiveness float64
	Experience     float64
}

// Result is the trust score plus its components and any non-fatal warnings.
type Result struct {
	Score    int
	Sub      SubScores
	Warnings []string
}

// Scorer computes trust scores. It holds no state and is safe for concurrent use.
type Scorer struct{}

// NewScorer creates a trust scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Validate rejects out-of-range profile values. Values are never clamped.
func Validate(p model.TrustProfile) error {
	switch {
	case math.IsNaN(p.Rating) || p.Rating < 0 || p.Rating > maxRating:
		return model.NewValidationError(model.ErrInvalidTrustProfile, "rating", fmt.Sprintf("%v outside [0,5]", p.Rating))
	case math.IsNaN(p.YearsExperience) || math.IsInf(p.YearsExperience, 0) || p.YearsExperience < 0:
		return model.NewValidationError(model.ErrInvalidTrustProfile, "years_experience", fmt.Sprintf("%v must be a finite value >= 0", p.YearsExperience))
	case p.CompletedProjects < 0:
		return model.NewValidationError(model.ErrInvalidTrustProfile, "completed_projects", fmt.Sprintf("%d must be >= 0", p.CompletedProjects))
	}
	return nil
}

// Score validates the profile and returns its trust score.
func (s *Scorer) Score(p model.TrustProfile) (Result, error) {
	if err := Validate(p); err != nil {
		return Result{}, err
	}

	var res Result
	bucket := p.ResponseTime
	if !bucket.Known() {
		raw := p.RawResponseTime
		if raw == "" {
			raw = bucket.String()
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("%v %q; treated as %s", model.ErrUnknownResponseBucket, raw, model.BucketSlower))
		bucket = model.BucketSlower
	}

	// Floats enter as their shortest decimal form so 92.5 rounds up and
	// 92.4999995 does not.
	verification := decimal.NewFromInt(unverifiedScore)
	if p.Verified {
		verification = decimal.NewFromInt(verifiedScore)
	}
	completion := decimal.Zero
	if p.CompletedProjects > 0 {
		completion = decimal.NewFromInt(completedScore)
	}
	rating := decimal.NewFromFloat(p.Rating).Mul(decimal.NewFromInt(ratingToPercent))
	response := decimal.NewFromInt(int64(responsiveness[bucket]))
	experience := decimal.NewFromFloat(math.Min(p.YearsExperience, experienceCapYear)).Mul(decimal.NewFromInt(yearToPercent))

	res.Sub = SubScores{
		Verification:   verification.InexactFloat64(),
		Rating:         rating.InexactFloat64(),
		Completion:     completion.InexactFloat64(),
		Responsiveness: response.InexactFloat64(),
		Experience:     experience.InexactFloat64(),
	}

	// Weights are percents, so shifting by two places divides by their sum.
	total := decimal.Sum(
		verification.Mul(decimal.NewFromInt(weightVerification)),
		rating.Mul(decimal.NewFromInt(weightRating)),
		completion.Mul(decimal.NewFromInt(weightCompletion)),
		response.Mul(decimal.NewFromInt(weightResponsiveness)),
		experience.Mul(decimal.NewFromInt(weightExperience)),
	).Shift(-2)

	// Round is half away from zero, which is half up for these non-negative totals.
	res.Score = max(0, min(maxScore, int(total.Round(0).IntPart())))
	return res, nil
}
