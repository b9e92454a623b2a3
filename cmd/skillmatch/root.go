package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
)

var version = "dev"

// Output formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skillmatch",
		Short: "Rank expert candidates by skill match and trust",
		Long: `skillmatch ranks expert candidates for a request.

Candidates are ordered by how well their skills cover the required skills,
then by a trust score built from verification, rating, completed projects,
responsiveness and experience.`,
		Version:      version,
		SilenceUsage: true,
	}

	debug := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
			return err
		}
		level := "warn"
		if *debug {
			level = "debug"
		}
		return logger.SetLevelString(level)
	}

	cmd.AddCommand(newRankCommand())
	cmd.AddCommand(newSubmitCommand())
	cmd.AddCommand(newSampleCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}

// readRequest loads a match request from path, or stdin when path is "-".
// Files ending in .yaml or .yml are parsed as YAML, everything else as JSON.
func readRequest(in io.Reader, path string) (types.MatchRequest, error) {
	var req types.MatchRequest

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	default:
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return req, fmt.Errorf("parse %s: %w", path, err)
	}
	return req, nil
}

func checkFormat(format string) error {
	if format != formatJSON && format != formatYAML {
		return fmt.Errorf("unsupported format %q: must be json or yaml", format)
	}
	return nil
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
