package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "SKILLMATCH_"
	EnvConfigPath = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SKILLMATCH_CONFIG is set
//  3. env (prefix SKILLMATCH_)
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, os.Getenv(EnvConfigPath))
}

// LoadFile is Load with an explicit file path; an empty path skips the file layer.
func LoadFile(_ context.Context, path string) (*Config, error) {
	base := New()

	// "/" keeps dotted skill names such as "node.js" intact inside relation lists.
	k := koanf.New("/")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// SKILLMATCH_RANK_WORKERS -> rank_workers (flat keys)
	envProvider := env.Provider(EnvPrefix, "/", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// the config path itself is not a setting
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
