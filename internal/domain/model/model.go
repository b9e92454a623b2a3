// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// SkillName is a normalized skill identifier (trimmed, lower-cased).
type SkillName string

// NormalizeSkill trims and lower-cases a raw skill string.
func NormalizeSkill(raw string) SkillName {
	return SkillName(strings.ToLower(strings.TrimSpace(raw)))
}

// SkillSet builds a set of normalized skills. Blank entries are dropped and
// duplicates collapse.
func SkillSet(raw []string) map[SkillName]struct{} {
	set := make(map[SkillName]struct{}, len(raw))
	for _, s := range raw {
		name := NormalizeSkill(s)
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

// MatchRequest is a client request for experts with the given skills.
type MatchRequest struct {
	ID             string   // opaque request identifier, optional for sync calls
	RequiredSkills []string // ordered, non-empty
}

// Validate checks that the request declares at least one usable skill.
func (r MatchRequest) Validate() error {
	if len(r.RequiredSkills) == 0 {
		return NewValidationError(ErrInvalidRequest, "required_skills", "at least one required skill is needed")
	}
	for _, s := range r.RequiredSkills {
		if NormalizeSkill(s) == "" {
			return NewValidationError(ErrInvalidRequest, "required_skills", "required skill must not be blank")
		}
	}
	return nil
}

// Required returns the distinct normalized required skills in first-seen order.
func (r MatchRequest) Required() []SkillName {
	seen := make(map[SkillName]struct{}, len(r.RequiredSkills))
	out := make([]SkillName, 0, len(r.RequiredSkills))
	for _, s := range r.RequiredSkills {
		name := NormalizeSkill(s)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Candidate is an expert considered for a request.
type Candidate struct {
	ID     string
	Skills []string
	Trust  TrustProfile
}

// TrustProfile carries the attributes the trust score is derived from.
type TrustProfile struct {
	Verified          bool
	Rating            float64 // [0,5]
	CompletedProjects int
	ResponseTime      ResponseBucket
	YearsExperience   float64

	// RawResponseTime is the wire value when it did not parse to a known bucket.
	RawResponseTime string
}

// ScoreResult is the immutable outcome of scoring one candidate.
type ScoreResult struct {
	CandidateID string
	MatchScore  int
	TrustScore  int
}

// Rejection records a candidate that was excluded from a ranking.
type Rejection struct {
	CandidateID string
	Err         error
}

// Warning records a non-fatal issue found while scoring a candidate.
type Warning struct {
	CandidateID string
	Message     string
}

// RankedList is the ordered result of one ranking call.
type RankedList struct {
	RequestID string
	Results   []ScoreResult
	Rejected  []Rejection
	Warnings  []Warning
}

// Job is an asynchronous ranking request flowing through the job queue.
type Job struct {
	ID          string
	Request     MatchRequest
	Candidates  []Candidate
	SubmittedAt time.Time
}
