// Package matching computes how well a candidate's skills cover a request.
package matching

import (
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/skills"
)

// Scoring constants.
const (
	exactCredit      = skills.ExactCredit
	MaxRelatedCredit = 60 // cap on related-skill credit, whatever the table says
	maxScore         = 100
)

// Kind tells how a required skill was satisfied.
type Kind string

// Credit kinds.
const (
	KindExact   Kind = "exact"
	KindRelated Kind = "related"
	KindMissing Kind = "missing"
)

// SkillCredit is the credit one required skill earned.
type SkillCredit struct {
	Required model.SkillName
	Via      model.SkillName // possessed skill that earned related credit
	Kind     Kind
	Credit   int
}

// Scorer computes match scores against a fixed relevance table.
type Scorer struct {
	table *skills.Table
}

// NewScorer creates a scorer. A nil table behaves as an empty one.
func NewScorer(table *skills.Table) *Scorer {
	if table == nil {
		table = skills.Empty()
	}
	return &Scorer{table: table}
}

// Score returns the 0..100 match score of candidate against req.
func (s *Scorer) Score(req model.MatchRequest, candidate model.Candidate) (int, error) {
	credits, err := s.Breakdown(req, candidate)
	if err != nil {
		return 0, err
	}
	num := 0
	for _, c := range credits {
		num += c.Credit
	}
	return roundedPercent(num, len(credits)), nil
}

// Breakdown returns per-skill credit for every distinct required skill, in
// the order the request first names them.
func (s *Scorer) Breakdown(req model.MatchRequest, candidate model.Candidate) ([]SkillCredit, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	required := req.Required()
	possessed := model.SkillSet(candidate.Skills)

	out := make([]SkillCredit, 0, len(required))
	for _, r := range required {
		if _, ok := possessed[r]; ok {
			out = append(out, SkillCredit{Required: r, Via: r, Kind: KindExact, Credit: exactCredit})
			continue
		}
		out = append(out, s.relatedCredit(r, possessed))
	}
	return out, nil
}

// relatedCredit picks the best related credit among possessed skills. Ties on
// credit resolve to the lexically smallest skill so the result does not depend
// on map iteration order.
func (s *Scorer) relatedCredit(required model.SkillName, possessed map[model.SkillName]struct{}) SkillCredit {
	best := SkillCredit{Required: required, Kind: KindMissing}
	for p := range possessed {
		c := min(s.table.Credit(required, p), MaxRelatedCredit)
		if c <= 0 {
			continue
		}
		if c > best.Credit || (c == best.Credit && p < best.Via) {
			best = SkillCredit{Required: required, Via: p, Kind: KindRelated, Credit: c}
		}
	}
	return best
}

// roundedPercent returns round-half-up(num / n), i.e. 100*num/(100*n), using
// integer arithmetic only.
func roundedPercent(num, n int) int {
	if n == 0 {
		return 0
	}
	score := (2*num + n) / (2 * n)
	return max(0, min(maxScore, score))
}
