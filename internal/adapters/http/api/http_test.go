package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/skillmatch/internal/adapters/http/api"
	"github.com/okian/skillmatch/internal/adapters/mq/queue"
	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	rankList model.RankedList
	rankErr  error
	lastReq  model.MatchRequest
	lastN    int

	submitAck types.SubmitResponse
	submitErr error
	lastJob   model.Job

	jobs map[string]types.JobStatus

	related map[string][]types.Relation
}

func (m *mockDeps) Rank(_ context.Context, req model.MatchRequest, candidates []model.Candidate) (model.RankedList, error) {
	m.lastReq = req
	m.lastN = len(candidates)
	if m.rankErr != nil {
		return model.RankedList{}, m.rankErr
	}
	return m.rankList, nil
}

func (m *mockDeps) Submit(_ context.Context, job model.Job) (types.SubmitResponse, error) {
	m.lastJob = job
	if m.submitErr != nil {
		return types.SubmitResponse{}, m.submitErr
	}
	return m.submitAck, nil
}

func (m *mockDeps) Job(_ context.Context, id string) (types.JobStatus, error) {
	st, ok := m.jobs[id]
	if !ok {
		return types.JobStatus{}, fmt.Errorf("job %q: %w", id, repository.ErrNotFound)
	}
	return st, nil
}

func (m *mockDeps) Related(_ context.Context, skill string) types.RelatedSkills {
	rel := m.related[skill]
	if rel == nil {
		rel = []types.Relation{}
	}
	return types.RelatedSkills{Skill: skill, Related: rel}
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"queue_len": 0, "jobs": 3}
}

func newMux(deps *mockDeps, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}, opts...).Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

type errBody struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	CandidateID string `json:"candidate_id"`
}

func decodeErr(rec *httptest.ResponseRecorder) errBody {
	var e errBody
	_ = json.Unmarshal(rec.Body.Bytes(), &e)
	return e
}

const sampleBody = `{
  "request_id": "req-1",
  "required_skills": ["React", "TypeScript"],
  "candidates": [
    {"id": "a", "skills": ["react", "typescript"], "trust": {"verified": true, "rating": 4.8, "completed_projects": 30, "response_time_bucket": "within_one_hour", "years_experience": 6}},
    {"id": "b", "skills": ["vue"], "trust": {"verified": false, "rating": 3.0, "completed_projects": 2, "response_time_bucket": "within_three_hours", "years_experience": 1}}
  ]
}`

func TestMatchEndpoint(t *testing.T) {
	Convey("POST /v1/match", t, func() {
		deps := &mockDeps{
			rankList: model.RankedList{
				RequestID: "req-1",
				Results: []model.ScoreResult{
					{CandidateID: "a", MatchScore: 100, TrustScore: 93},
					{CandidateID: "b", MatchScore: 0, TrustScore: 40},
				},
			},
		}
		mux := newMux(deps)

		Convey("returns the ranked list with 1-based ranks", func() {
			rec := do(mux, http.MethodPost, "/v1/match", sampleBody)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldStartWith, "application/json")

			var resp types.MatchResponse
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.RequestID, ShouldEqual, "req-1")
			So(resp.Ranked, ShouldHaveLength, 2)
			So(resp.Ranked[0], ShouldResemble, types.Entry{Rank: 1, CandidateID: "a", MatchScore: 100, TrustScore: 93})
			So(resp.Ranked[1].Rank, ShouldEqual, 2)
			So(resp.Rejected, ShouldBeEmpty)
			So(resp.Warnings, ShouldBeEmpty)

			So(deps.lastReq.ID, ShouldEqual, "req-1")
			So(deps.lastReq.RequiredSkills, ShouldResemble, []string{"React", "TypeScript"})
			So(deps.lastN, ShouldEqual, 2)
		})

		Convey("encodes empty collections as arrays", func() {
			deps.rankList = model.RankedList{}
			rec := do(mux, http.MethodPost, "/v1/match", `{"required_skills":["go"],"candidates":[]}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"ranked":[]`)
			So(rec.Body.String(), ShouldContainSubstring, `"rejected":[]`)
		})

		Convey("rejects malformed JSON", func() {
			rec := do(mux, http.MethodPost, "/v1/match", `{"required_skills":`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeErr(rec).Code, ShouldEqual, "bad_request")
		})

		Convey("rejects trailing data after the body", func() {
			rec := do(mux, http.MethodPost, "/v1/match", `{"required_skills":["go"]} {}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("maps an invalid request to 400", func() {
			deps.rankErr = model.NewValidationError(model.ErrInvalidRequest, "required_skills", "at least one required skill is needed")
			rec := do(mux, http.MethodPost, "/v1/match", `{"required_skills":[]}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeErr(rec).Code, ShouldEqual, "invalid_request")
		})

		Convey("maps an aborting candidate to 422 naming the candidate", func() {
			deps.rankErr = &ranking.CandidateError{
				CandidateID: "b",
				Index:       1,
				Err:         model.NewValidationError(model.ErrInvalidTrustProfile, "rating", "must be within [0,5]"),
			}
			rec := do(mux, http.MethodPost, "/v1/match", sampleBody)
			So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
			e := decodeErr(rec)
			So(e.Code, ShouldEqual, "invalid_trust_profile")
			So(e.CandidateID, ShouldEqual, "b")
		})

		Convey("maps a deadline to 504", func() {
			deps.rankErr = fmt.Errorf("ranking cancelled: %w", context.DeadlineExceeded)
			rec := do(mux, http.MethodPost, "/v1/match", sampleBody)
			So(rec.Code, ShouldEqual, http.StatusGatewayTimeout)
			So(decodeErr(rec).Code, ShouldEqual, "timeout")
		})

		Convey("maps unexpected failures to 500", func() {
			deps.rankErr = fmt.Errorf("boom")
			rec := do(mux, http.MethodPost, "/v1/match", sampleBody)
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("rejects the wrong method", func() {
			rec := do(mux, http.MethodGet, "/v1/match", "")
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestMatchLimits(t *testing.T) {
	Convey("request limits", t, func() {
		deps := &mockDeps{}

		Convey("too many candidates yields 413", func() {
			mux := newMux(deps, api.WithMaxCandidates(1))
			rec := do(mux, http.MethodPost, "/v1/match", sampleBody)
			So(rec.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			So(decodeErr(rec).Code, ShouldEqual, "too_many_candidates")
			So(deps.lastN, ShouldEqual, 0)
		})

		Convey("an oversized body yields 413", func() {
			mux := newMux(deps, api.WithMaxBodyBytes(64))
			var buf bytes.Buffer
			buf.WriteString(`{"required_skills":["go"],"candidates":[`)
			for i := 0; i < 20; i++ {
				if i > 0 {
					buf.WriteByte(',')
				}
				fmt.Fprintf(&buf, `{"id":"c%d","skills":["go"]}`, i)
			}
			buf.WriteString(`]}`)
			rec := do(mux, http.MethodPost, "/v1/match", buf.String())
			So(rec.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			So(decodeErr(rec).Code, ShouldEqual, "body_too_large")
		})
	})
}

func TestJobsEndpoints(t *testing.T) {
	Convey("job endpoints", t, func() {
		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		deps := &mockDeps{
			submitAck: types.SubmitResponse{JobID: "req-1", Status: types.JobQueued},
			jobs: map[string]types.JobStatus{
				"done-1": {
					JobID:       "done-1",
					Status:      types.JobDone,
					SubmittedAt: now,
					UpdatedAt:   now,
					Result: &types.MatchResponse{
						RequestID: "done-1",
						Ranked:    []types.Entry{{Rank: 1, CandidateID: "a", MatchScore: 100, TrustScore: 93}},
						Rejected:  []types.Rejection{},
						Warnings:  []types.Warning{},
					},
				},
			},
		}
		mux := newMux(deps)

		Convey("a new submission is accepted", func() {
			rec := do(mux, http.MethodPost, "/v1/jobs", sampleBody)
			So(rec.Code, ShouldEqual, http.StatusAccepted)
			var ack types.SubmitResponse
			So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
			So(ack.JobID, ShouldEqual, "req-1")
			So(ack.Duplicate, ShouldBeFalse)
			So(deps.lastJob.ID, ShouldEqual, "req-1")
			So(deps.lastJob.Candidates, ShouldHaveLength, 2)
		})

		Convey("a duplicate submission is acknowledged with 200", func() {
			deps.submitAck.Duplicate = true
			rec := do(mux, http.MethodPost, "/v1/jobs", sampleBody)
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("a full queue yields 429", func() {
			deps.submitErr = fmt.Errorf("enqueue: %w", queue.ErrFull)
			rec := do(mux, http.MethodPost, "/v1/jobs", sampleBody)
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
			So(decodeErr(rec).Code, ShouldEqual, "backpressure")
		})

		Convey("a closed queue yields 503", func() {
			deps.submitErr = queue.ErrClosed
			rec := do(mux, http.MethodPost, "/v1/jobs", sampleBody)
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("an invalid job yields 400", func() {
			deps.submitErr = model.NewValidationError(model.ErrInvalidRequest, "required_skills", "at least one required skill is needed")
			rec := do(mux, http.MethodPost, "/v1/jobs", `{"required_skills":[]}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("a finished job is returned with its result", func() {
			rec := do(mux, http.MethodGet, "/v1/jobs/done-1", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var st types.JobStatus
			So(json.Unmarshal(rec.Body.Bytes(), &st), ShouldBeNil)
			So(st.Status, ShouldEqual, types.JobDone)
			So(st.Result, ShouldNotBeNil)
			So(st.Result.Ranked[0].CandidateID, ShouldEqual, "a")
		})

		Convey("an unknown job yields 404", func() {
			rec := do(mux, http.MethodGet, "/v1/jobs/missing", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decodeErr(rec).Code, ShouldEqual, "not_found")
		})
	})
}

func TestRelatedSkillsEndpoint(t *testing.T) {
	Convey("GET /v1/skills/{name}/related", t, func() {
		deps := &mockDeps{related: map[string][]types.Relation{
			"react":        {{Skill: "javascript", Credit: 60}},
			"ui/ux design": {{Skill: "figma", Credit: 60}},
		}}
		mux := newMux(deps)

		Convey("lists relations", func() {
			rec := do(mux, http.MethodGet, "/v1/skills/react/related", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var rel types.RelatedSkills
			So(json.Unmarshal(rec.Body.Bytes(), &rel), ShouldBeNil)
			So(rel.Skill, ShouldEqual, "react")
			So(rel.Related, ShouldResemble, []types.Relation{{Skill: "javascript", Credit: 60}})
		})

		Convey("accepts escaped slashes in skill names", func() {
			rec := do(mux, http.MethodGet, "/v1/skills/ui%2Fux%20design/related", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "figma")
		})

		Convey("an unrelated skill yields an empty list", func() {
			rec := do(mux, http.MethodGet, "/v1/skills/cobol/related", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"related":[]`)
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("operational endpoints", t, func() {
		mux := newMux(&mockDeps{})

		Convey("stats are served as JSON", func() {
			rec := do(mux, http.MethodGet, "/stats", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["jobs"], ShouldEqual, float64(3))
		})

		Convey("healthz serves the metrics exposition", func() {
			_ = do(mux, http.MethodGet, "/stats", "")
			rec := do(mux, http.MethodGet, "/healthz", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "skillmatch_")
		})
	})
}

func TestKindError(t *testing.T) {
	Convey("KindError", t, func() {
		cause := fmt.Errorf("decode: %w", context.Canceled)
		err := api.WrapKind("api.test", api.ErrBadRequest, cause)

		So(err.Error(), ShouldEqual, "api.test: bad request: decode: context canceled")
		So(api.NewKind("api.test", api.ErrNotFound).Error(), ShouldEqual, "api.test: not found")
		So(api.Wrap("api.test", nil), ShouldBeNil)
		So(api.Wrap("api.test", cause).Error(), ShouldEqual, "api.test: decode: context canceled")

		var target *api.KindError
		So(errors.As(err, &target), ShouldBeTrue)
		So(target.Op, ShouldEqual, "api.test")
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
		So(errors.Is(err, api.ErrNotFound), ShouldBeFalse)
	})
}
