// Package types contains the wire representations shared by the HTTP API and the CLI.
package types

import (
	"errors"
	"time"

	"github.com/okian/skillmatch/internal/domain/model"
)

// Trust is the wire form of model.TrustProfile.
type Trust struct {
	Verified           bool    `json:"verified" yaml:"verified"`
	Rating             float64 `json:"rating" yaml:"rating"`
	CompletedProjects  int     `json:"completed_projects" yaml:"completed_projects"`
	ResponseTimeBucket string  `json:"response_time_bucket" yaml:"response_time_bucket"`
	YearsExperience    float64 `json:"years_experience" yaml:"years_experience"`
}

// Candidate is the wire form of model.Candidate.
type Candidate struct {
	ID     string   `json:"id" yaml:"id"`
	Skills []string `json:"skills" yaml:"skills"`
	Trust  Trust    `json:"trust" yaml:"trust"`
}

// MatchRequest is the body of a ranking call.
type MatchRequest struct {
	RequestID      string      `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	RequiredSkills []string    `json:"required_skills" yaml:"required_skills"`
	Candidates     []Candidate `json:"candidates" yaml:"candidates"`
}

// ToDomain converts the wire request. Unrecognized response buckets map to
// model.BucketUnknown, keep their wire value, and surface later as scoring
// warnings.
func (r MatchRequest) ToDomain() (model.MatchRequest, []model.Candidate) {
	req := model.MatchRequest{ID: r.RequestID, RequiredSkills: r.RequiredSkills}
	cands := make([]model.Candidate, len(r.Candidates))
	for i, c := range r.Candidates {
		bucket, ok := model.ParseResponseBucket(c.Trust.ResponseTimeBucket)
		cands[i] = model.Candidate{
			ID:     c.ID,
			Skills: c.Skills,
			Trust: model.TrustProfile{
				Verified:          c.Trust.Verified,
				Rating:            c.Trust.Rating,
				CompletedProjects: c.Trust.CompletedProjects,
				ResponseTime:      bucket,
				YearsExperience:   c.Trust.YearsExperience,
			},
		}
		if !ok {
			cands[i].Trust.RawResponseTime = c.Trust.ResponseTimeBucket
		}
	}
	return req, cands
}

// Entry is one ranked candidate.
type Entry struct {
	Rank        int    `json:"rank" yaml:"rank"`
	CandidateID string `json:"candidate_id" yaml:"candidate_id"`
	MatchScore  int    `json:"match_score" yaml:"match_score"`
	TrustScore  int    `json:"trust_score" yaml:"trust_score"`
}

// Rejection explains why a candidate was left out.
type Rejection struct {
	CandidateID string `json:"candidate_id" yaml:"candidate_id"`
	Code        string `json:"code" yaml:"code"`
	Reason      string `json:"reason" yaml:"reason"`
}

// Warning is a non-fatal scoring note.
type Warning struct {
	CandidateID string `json:"candidate_id" yaml:"candidate_id"`
	Message     string `json:"message" yaml:"message"`
}

// MatchResponse is the body returned for a ranking call.
type MatchResponse struct {
	RequestID string      `json:"request_id" yaml:"request_id"`
	Ranked    []Entry     `json:"ranked" yaml:"ranked"`
	Rejected  []Rejection `json:"rejected" yaml:"rejected"`
	Warnings  []Warning   `json:"warnings" yaml:"warnings"`
}

// FromRankedList converts a ranking result. Slices are never nil so they
// encode as empty arrays.
func FromRankedList(l model.RankedList) MatchResponse {
	resp := MatchResponse{
		RequestID: l.RequestID,
		Ranked:    make([]Entry, len(l.Results)),
		Rejected:  make([]Rejection, len(l.Rejected)),
		Warnings:  make([]Warning, len(l.Warnings)),
	}
	for i, r := range l.Results {
		resp.Ranked[i] = Entry{
			Rank:        i + 1,
			CandidateID: r.CandidateID,
			MatchScore:  r.MatchScore,
			TrustScore:  r.TrustScore,
		}
	}
	for i, r := range l.Rejected {
		resp.Rejected[i] = Rejection{CandidateID: r.CandidateID, Code: ErrorCode(r.Err), Reason: reason(r.Err)}
	}
	for i, w := range l.Warnings {
		resp.Warnings[i] = Warning(w)
	}
	return resp
}

// ErrorCode maps a domain error to a stable machine-readable code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, model.ErrInvalidTrustProfile):
		return "invalid_trust_profile"
	case errors.Is(err, model.ErrInvalidCandidate):
		return "invalid_candidate"
	case errors.Is(err, model.ErrUnknownResponseBucket):
		return "unknown_response_bucket"
	default:
		return "internal"
	}
}

func reason(err error) string {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return verr.Field + ": " + verr.Reason
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Job statuses.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// SubmitResponse acknowledges an asynchronous ranking job.
type SubmitResponse struct {
	JobID     string `json:"job_id" yaml:"job_id"`
	Status    string `json:"status" yaml:"status"`
	Duplicate bool   `json:"duplicate" yaml:"duplicate"`
}

// JobStatus reports the state of an asynchronous ranking job.
type JobStatus struct {
	JobID       string         `json:"job_id" yaml:"job_id"`
	Status      string         `json:"status" yaml:"status"`
	SubmittedAt time.Time      `json:"submitted_at" yaml:"submitted_at"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updated_at"`
	Result      *MatchResponse `json:"result,omitempty" yaml:"result,omitempty"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Relation is one related skill and its credit.
type Relation struct {
	Skill  string `json:"skill" yaml:"skill"`
	Credit int    `json:"credit" yaml:"credit"`
}

// RelatedSkills lists the configured relations of a skill.
type RelatedSkills struct {
	Skill   string     `json:"skill" yaml:"skill"`
	Related []Relation `json:"related" yaml:"related"`
}
