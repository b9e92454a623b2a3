package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/skillmatch/internal/config"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/skills"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.RankWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.ParallelThreshold, convey.ShouldEqual, 64)
			convey.So(cfg.MaxCandidates, convey.ShouldEqual, 10_000)
			convey.So(cfg.RankTimeout(), convey.ShouldEqual, 2*time.Second)
			convey.So(cfg.Policy(), convey.ShouldEqual, ranking.PolicyExclude)
			convey.So(cfg.JobQueueSize, convey.ShouldEqual, 1_024)
			convey.So(cfg.SkillRelations, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with bad values", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":          func(c *config.Config) { c.Addr = " " },
			"unknown log format":  func(c *config.Config) { c.LogFormat = "xml" },
			"unknown policy":      func(c *config.Config) { c.InvalidCandidatePolicy = "skip" },
			"zero max candidates": func(c *config.Config) { c.MaxCandidates = 0 },
			"negative timeout":    func(c *config.Config) { c.RankTimeoutMS = -1 },
			"zero queue size":     func(c *config.Config) { c.JobQueueSize = 0 },
		}
		for name, mutate := range cases {
			convey.Convey("Then "+name+" is rejected", func() {
				cfg := config.New()
				mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then abort policy is accepted case-insensitively", func() {
			cfg := config.New()
			cfg.InvalidCandidatePolicy = "Abort"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.Policy(), convey.ShouldEqual, ranking.PolicyAbort)
		})
	})
}

func TestConfig_SkillTable(t *testing.T) {
	convey.Convey("Given relation settings", t, func() {
		ctx := context.Background()

		convey.Convey("When nothing is configured the built-in relations are used", func() {
			table, err := config.New().SkillTable(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(table.Len(), convey.ShouldEqual, len(config.DefaultSkillRelations()))
			convey.So(table.RelatedCreditFor("React", "JavaScript"), convey.ShouldEqual, 60)
			convey.So(table.RelatedCreditFor("JavaScript", "React"), convey.ShouldEqual, 30)
		})

		convey.Convey("When relations are inline they replace the built-in ones", func() {
			cfg := config.New()
			cfg.SkillRelations = []skills.Entry{
				{Skill: "go", Related: []skills.Relation{{Skill: "rust", Credit: 20}}},
			}
			table, err := cfg.SkillTable(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(table.Len(), convey.ShouldEqual, 1)
			convey.So(table.RelatedCreditFor("react", "javascript"), convey.ShouldEqual, 0)
		})

		convey.Convey("When inline relations are invalid", func() {
			cfg := config.New()
			cfg.SkillRelations = []skills.Entry{
				{Skill: "go", Related: []skills.Relation{{Skill: "rust", Credit: 100}}},
			}
			_, err := cfg.SkillTable(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(errors.Is(err, skills.ErrInvalidRelation), convey.ShouldBeTrue)
		})

		convey.Convey("When the relation file is missing", func() {
			cfg := config.New()
			cfg.SkillRelationsFile = "/non/existent/relations.yaml"
			_, err := cfg.SkillTable(ctx)
			convey.So(errors.Is(err, skills.ErrLoadRelations), convey.ShouldBeTrue)
		})

		convey.Convey("DefaultSkillRelations returns independent copies", func() {
			a := config.DefaultSkillRelations()
			a[0].Related[0].Credit = 1
			b := config.DefaultSkillRelations()
			convey.So(b[0].Related[0].Credit, convey.ShouldEqual, 60)
		})
	})
}
