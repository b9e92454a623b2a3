package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/okian/skillmatch/internal/domain/types"
)

var sampleSkills = []string{
	"react", "typescript", "javascript", "node.js", "python", "go",
	"ui/ux design", "figma", "vue", "postgresql", "kubernetes", "aws",
}

var sampleBuckets = []string{
	"immediate", "within_one_hour", "within_three_hours", "within_one_day", "slower",
}

type sampleOptions struct {
	candidates int
	required   []string
	seed       uint64
	format     string
}

func newSampleCommand() *cobra.Command {
	opts := &sampleOptions{}
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a random match request",
		Long: `Generate a random match request suitable for "rank" and "submit".

Candidate ids and the request id are random UUIDs. Skills, trust attributes
and response times are drawn from --seed, so the same seed yields the same
candidates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}
			if opts.candidates < 0 {
				return fmt.Errorf("candidates must be >= 0, got %d", opts.candidates)
			}
			if opts.seed == 0 {
				opts.seed = uint64(time.Now().UnixNano())
			}
			return writeOutput(cmd.OutOrStdout(), opts.format, generateSample(opts))
		},
	}

	cmd.Flags().IntVarP(&opts.candidates, "candidates", "n", 10, "Number of candidates")
	cmd.Flags().StringSliceVarP(&opts.required, "skills", "s", []string{"react", "typescript"}, "Required skills")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Random seed (0 picks one)")
	cmd.Flags().StringVarP(&opts.format, "output", "o", formatJSON, "Output format: json or yaml")

	return cmd
}

func generateSample(opts *sampleOptions) types.MatchRequest {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed>>1|1))

	req := types.MatchRequest{
		RequestID:      uuid.NewString(),
		RequiredSkills: append([]string(nil), opts.required...),
		Candidates:     make([]types.Candidate, opts.candidates),
	}
	for i := range req.Candidates {
		n := 1 + rng.IntN(4)
		skills := make([]string, 0, n)
		for _, j := range rng.Perm(len(sampleSkills))[:n] {
			skills = append(skills, sampleSkills[j])
		}
		req.Candidates[i] = types.Candidate{
			ID:     uuid.NewString(),
			Skills: skills,
			Trust: types.Trust{
				Verified:           rng.IntN(2) == 1,
				Rating:             float64(rng.IntN(51)) / 10,
				CompletedProjects:  rng.IntN(200),
				ResponseTimeBucket: sampleBuckets[rng.IntN(len(sampleBuckets))],
				YearsExperience:    float64(rng.IntN(21)),
			},
		}
	}
	return req
}
