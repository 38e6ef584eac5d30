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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if VOTEBOARD_CONFIG is set
//  3. env (prefix VOTEBOARD_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("VOTEBOARD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: VOTEBOARD_ADDR, VOTEBOARD_DATA_DIR, ...
	// Env keys map to flat koanf keys; underscores are preserved to match
	// the koanf tags on the struct.
	envProvider := env.Provider("VOTEBOARD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "voteboard_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch cfg.StoreBackend {
	case BackendFS, BackendMemory:
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, cfg.StoreBackend)
	}
	if cfg.StoreBackend == BackendFS && strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("%w: data_dir required for fs store", ErrInvalidConfig)
	}
	if cfg.ListPageSize < 1 {
		return fmt.Errorf("%w: list_page_size must be positive", ErrInvalidConfig)
	}
	if cfg.MaxRawVotes < 0 {
		return fmt.Errorf("%w: max_raw_votes must not be negative", ErrInvalidConfig)
	}
	return nil
}
