package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/skillmatch/internal/config"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
)

type rankOptions struct {
	configPath string
	format     string
	policy     string
}

func newRankCommand() *cobra.Command {
	opts := &rankOptions{}
	cmd := &cobra.Command{
		Use:   "rank <input.json|->",
		Short: "Rank the candidates of an input file locally",
		Long: `Rank the candidates of a match request without a server.

The relevance table and ranking settings come from the same configuration the
server uses: defaults, then the file named by --config or SKILLMATCH_CONFIG,
then SKILLMATCH_* environment variables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", os.Getenv(config.EnvConfigPath), "Configuration file (YAML)")
	cmd.Flags().StringVarP(&opts.format, "output", "o", formatJSON, "Output format: json or yaml")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "Invalid candidate policy override: exclude or abort")

	return cmd
}

func runRank(cmd *cobra.Command, opts *rankOptions, path string) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	ctx := cmd.Context()

	cfg, err := config.LoadFile(ctx, opts.configPath)
	if err != nil {
		return err
	}
	policy := cfg.Policy()
	if opts.policy != "" {
		if policy, err = ranking.ParsePolicy(opts.policy); err != nil {
			return err
		}
	}

	table, err := cfg.SkillTable(ctx)
	if err != nil {
		return err
	}

	in, err := readRequest(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	ranker := ranking.New(table,
		ranking.WithWorkers(cfg.RankWorkers),
		ranking.WithParallelThreshold(cfg.ParallelThreshold),
		ranking.WithPolicy(policy),
		ranking.WithLogger(logger.Get().Named("rank")),
	)
	req, candidates := in.ToDomain()
	list, err := ranker.Rank(ctx, req, candidates)
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), opts.format, types.FromRankedList(list))
}
