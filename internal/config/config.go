// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/skills"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RankWorkers bounds how many candidates one ranking call scores in parallel.
	RankWorkers int `koanf:"rank_workers"`

	// ParallelThreshold is the candidate count from which scoring fans out.
	ParallelThreshold int `koanf:"parallel_threshold"`

	// MaxCandidates caps the candidates accepted in one request.
	MaxCandidates int `koanf:"max_candidates"`

	// RankTimeoutMS bounds a single ranking call; 0 disables the deadline.
	RankTimeoutMS int `koanf:"rank_timeout_ms"`

	// InvalidCandidatePolicy is "exclude" or "abort".
	InvalidCandidatePolicy string `koanf:"invalid_candidate_policy"`

	// JobQueueSize bounds the asynchronous job queue.
	JobQueueSize int `koanf:"job_queue_size"`

	// JobWorkers sets the number of job workers; 0 picks a CPU based default.
	JobWorkers int `koanf:"job_workers"`

	// JobDedupeSize sets how many job ids are remembered for idempotency.
	JobDedupeSize int `koanf:"job_dedupe_size"`

	// JobResultCapacity sets how many job results are retained.
	JobResultCapacity int `koanf:"job_result_capacity"`

	// SkillRelationsFile points at a YAML file with a top-level "relations" list.
	SkillRelationsFile string `koanf:"skill_relations_file"`

	// SkillRelations lists relations inline.
	SkillRelations []skills.Entry `koanf:"skill_relations"`
}

// New creates a Config with defaults. Relations are left empty so that a
// configured list replaces the built-in one instead of merging into it.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		RankWorkers:            runtime.NumCPU(),
		ParallelThreshold:      64,
		MaxCandidates:          10_000,
		RankTimeoutMS:          2_000,
		InvalidCandidatePolicy: string(ranking.PolicyExclude),
		JobQueueSize:           1_024,
		JobWorkers:             runtime.NumCPU(),
		JobDedupeSize:          50_000,
		JobResultCapacity:      10_000,
	}
}

// Validate checks values that cannot be corrected by defaults.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := ranking.ParsePolicy(c.InvalidCandidatePolicy); err != nil {
		return fmt.Errorf("%w: invalid_candidate_policy: %w", ErrInvalidConfig, err)
	}
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("%w: max_candidates must be > 0", ErrInvalidConfig)
	}
	if c.RankTimeoutMS < 0 {
		return fmt.Errorf("%w: rank_timeout_ms must be >= 0", ErrInvalidConfig)
	}
	if c.JobQueueSize <= 0 {
		return fmt.Errorf("%w: job_queue_size must be > 0", ErrInvalidConfig)
	}
	return nil
}

// Policy returns the parsed invalid-candidate policy. Call after Validate.
func (c *Config) Policy() ranking.Policy {
	p, err := ranking.ParsePolicy(c.InvalidCandidatePolicy)
	if err != nil {
		return ranking.PolicyExclude
	}
	return p
}

// RankTimeout returns the per-call ranking deadline, zero when disabled.
func (c *Config) RankTimeout() time.Duration {
	return time.Duration(c.RankTimeoutMS) * time.Millisecond
}

// SkillTable builds the relevance table. Entries from SkillRelationsFile come
// first, then inline SkillRelations; with neither, DefaultSkillRelations is used.
func (c *Config) SkillTable(ctx context.Context) (*skills.Table, error) {
	var entries []skills.Entry
	if c.SkillRelationsFile != "" {
		fromFile, err := skills.LoadEntries(ctx, c.SkillRelationsFile)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fromFile...)
	}
	entries = append(entries, c.SkillRelations...)
	if c.SkillRelationsFile == "" && len(c.SkillRelations) == 0 {
		entries = DefaultSkillRelations()
	}

	table, err := skills.NewTable(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: skill relations: %w", ErrInvalidConfig, err)
	}
	return table, nil
}

// DefaultSkillRelations returns the built-in relation seed. Each call returns
// a fresh slice.
func DefaultSkillRelations() []skills.Entry {
	return []skills.Entry{
		{Skill: "react", Related: []skills.Relation{
			{Skill: "javascript", Credit: 60},
			{Skill: "typescript", Credit: 40},
			{Skill: "node.js", Credit: 30},
		}},
		{Skill: "typescript", Related: []skills.Relation{
			{Skill: "javascript", Credit: 60},
		}},
		{Skill: "javascript", Related: []skills.Relation{
			{Skill: "typescript", Credit: 50},
			{Skill: "react", Credit: 30},
		}},
		{Skill: "node.js", Related: []skills.Relation{
			{Skill: "javascript", Credit: 60},
			{Skill: "typescript", Credit: 40},
		}},
		{Skill: "python", Related: []skills.Relation{
			{Skill: "django", Credit: 40},
			{Skill: "machine learning", Credit: 30},
		}},
		{Skill: "ui/ux design", Related: []skills.Relation{
			{Skill: "figma", Credit: 60},
			{Skill: "prototyping", Credit: 50},
		}},
	}
}
