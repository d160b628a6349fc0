package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New)
//  2. YAML file named by HONORBOARD_CONFIG, if set
//  3. env vars with prefix HONORBOARD_
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("HONORBOARD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// HONORBOARD_ADDR -> addr, HONORBOARD_PERSIST_WORKERS -> persist_workers.
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("HONORBOARD_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "honorboard_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.ImprovementThreshold < 0 {
		return nil, fmt.Errorf("%w: improvement_threshold must not be negative", ErrInvalidConfig)
	}
	return &cfg, nil
}
