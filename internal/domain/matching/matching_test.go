package matching_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/okian/skillmatch/internal/domain/matching"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/skills"
	. "github.com/smartystreets/goconvey/convey"
)

func newScorer() *matching.Scorer {
	table, err := skills.NewTable([]skills.Entry{
		{Skill: "react", Related: []skills.Relation{{Skill: "javascript", Credit: 60}}},
		{Skill: "go", Related: []skills.Relation{
			{Skill: "rust", Credit: 90},
			{Skill: "c", Credit: 30},
		}},
		{Skill: "kubernetes", Related: []skills.Relation{
			{Skill: "docker", Credit: 45},
			{Skill: "nomad", Credit: 45},
		}},
	})
	if err != nil {
		panic(err)
	}
	return matching.NewScorer(table)
}

func candidate(id string, skillList ...string) model.Candidate {
	return model.Candidate{ID: id, Skills: skillList}
}

func TestScorer_Scenarios(t *testing.T) {
	Convey("Given a request for React and TypeScript", t, func() {
		scorer := newScorer()
		req := model.MatchRequest{ID: "req-1", RequiredSkills: []string{"React", "TypeScript"}}

		Convey("When the candidate has both skills", func() {
			score, err := scorer.Score(req, candidate("A", "React", "TypeScript"))
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 100)
		})

		Convey("When the candidate has only React", func() {
			score, err := scorer.Score(req, candidate("B", "React"))
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 50)
		})

		Convey("When the candidate has only the related JavaScript", func() {
			score, err := scorer.Score(req, candidate("C", "JavaScript"))
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 30)
		})

		Convey("When the candidate has no skills", func() {
			score, err := scorer.Score(req, candidate("D"))
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 0)
		})
	})
}

func TestScorer_Rules(t *testing.T) {
	Convey("Given a scorer with a relevance table", t, func() {
		scorer := newScorer()

		Convey("When the request is empty", func() {
			_, err := scorer.Score(model.MatchRequest{}, candidate("A", "go"))

			Convey("Then it is an invalid request", func() {
				So(errors.Is(err, model.ErrInvalidRequest), ShouldBeTrue)
			})
		})

		Convey("When a configured relation exceeds the related-credit cap", func() {
			credits, err := scorer.Breakdown(model.MatchRequest{RequiredSkills: []string{"go"}}, candidate("A", "rust"))

			Convey("Then the credit is capped", func() {
				So(err, ShouldBeNil)
				So(credits, ShouldHaveLength, 1)
				So(credits[0].Kind, ShouldEqual, matching.KindRelated)
				So(credits[0].Credit, ShouldEqual, matching.MaxRelatedCredit)
				So(credits[0].Via, ShouldEqual, model.SkillName("rust"))
			})
		})

		Convey("When several possessed skills relate to one required skill", func() {
			credits, err := scorer.Breakdown(model.MatchRequest{RequiredSkills: []string{"go"}}, candidate("A", "c", "rust"))

			Convey("Then the best related credit wins", func() {
				So(err, ShouldBeNil)
				So(credits[0].Credit, ShouldEqual, 60)
			})
		})

		Convey("When related credits tie", func() {
			credits, err := scorer.Breakdown(model.MatchRequest{RequiredSkills: []string{"kubernetes"}}, candidate("A", "nomad", "docker"))

			Convey("Then the lexically smallest skill is reported", func() {
				So(err, ShouldBeNil)
				So(credits[0].Via, ShouldEqual, model.SkillName("docker"))
				So(credits[0].Credit, ShouldEqual, 45)
			})
		})

		Convey("When the exact skill is present alongside a related one", func() {
			credits, err := scorer.Breakdown(model.MatchRequest{RequiredSkills: []string{"go"}}, candidate("A", "rust", "Go"))

			Convey("Then exact credit is used", func() {
				So(err, ShouldBeNil)
				So(credits[0].Kind, ShouldEqual, matching.KindExact)
				So(credits[0].Credit, ShouldEqual, 100)
			})
		})

		Convey("When the score lands on a half", func() {
			// (100 + 0 + 45 + 0) / 4 = 36.25 -> 36; (100 + 45) / 2 = 72.5 -> 73
			four := model.MatchRequest{RequiredSkills: []string{"go", "python", "kubernetes", "sql"}}
			two := model.MatchRequest{RequiredSkills: []string{"go", "kubernetes"}}
			s4, err4 := scorer.Score(four, candidate("A", "go", "docker"))
			s2, err2 := scorer.Score(two, candidate("A", "go", "docker"))

			Convey("Then rounding is half-up", func() {
				So(err4, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(s4, ShouldEqual, 36)
				So(s2, ShouldEqual, 73)
			})
		})

		Convey("When required skills are duplicated", func() {
			score, err := scorer.Score(model.MatchRequest{RequiredSkills: []string{"go", "GO", "python"}}, candidate("A", "go"))
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 50)
		})

		Convey("When the scorer has no table", func() {
			score, err := matching.NewScorer(nil).Score(model.MatchRequest{RequiredSkills: []string{"react"}}, candidate("A", "javascript"))
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 0)
		})
	})
}

func TestScorer_Properties(t *testing.T) {
	Convey("Given random requests and candidates", t, func() {
		scorer := newScorer()
		rng := rand.New(rand.NewSource(7))
		pool := []string{"go", "rust", "c", "react", "javascript", "typescript", "kubernetes", "docker", "nomad", "sql"}

		pick := func(n int) []string {
			out := make([]string, n)
			for i := range out {
				out[i] = pool[rng.Intn(len(pool))]
			}
			return out
		}
		shuffled := func(in []string) []string {
			out := append([]string(nil), in...)
			rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
			return out
		}

		Convey("Then scores are bounded and independent of input order", func() {
			for i := 0; i < 300; i++ {
				req := model.MatchRequest{RequiredSkills: pick(1 + rng.Intn(5))}
				cand := candidate("x", pick(rng.Intn(6))...)

				score, err := scorer.Score(req, cand)
				So(err, ShouldBeNil)
				So(score, ShouldBeBetweenOrEqual, 0, 100)

				permReq := model.MatchRequest{RequiredSkills: shuffled(req.RequiredSkills)}
				permCand := candidate("x", shuffled(cand.Skills)...)
				again, err := scorer.Score(permReq, permCand)
				So(err, ShouldBeNil)
				So(again, ShouldEqual, score)
			}
		})

		Convey("Then possessing every required skill scores 100", func() {
			for i := 0; i < 100; i++ {
				required := pick(1 + rng.Intn(5))
				score, err := scorer.Score(model.MatchRequest{RequiredSkills: required}, candidate("x", append(pick(3), required...)...))
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 100)
			}
		})

		Convey("Then exact credit is never below related credit", func() {
			for _, required := range pool {
				for _, possessed := range pool {
					credits, err := scorer.Breakdown(model.MatchRequest{RequiredSkills: []string{required}}, candidate("x", possessed))
					So(err, ShouldBeNil)
					if credits[0].Kind == matching.KindRelated {
						So(credits[0].Credit, ShouldBeLessThan, 100)
						So(credits[0].Credit, ShouldBeLessThanOrEqualTo, matching.MaxRelatedCredit)
					}
				}
			}
		})
	})
}
