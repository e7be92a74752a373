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
//  2. file (YAML) if STADIO_CONFIG is set
//  3. env (prefix STADIO_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("STADIO_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: STADIO_ADDR, STADIO_COOLDOWN_SECONDS, ...
	// Map env keys like STADIO_COOLDOWN_SECONDS -> cooldown_seconds and
	// preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("STADIO_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "stadio_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the process must not start with. Clock
// ordering is checked later when the stage clock is parsed.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.GoldFile == "":
		return fmt.Errorf("%w: gold_file must not be empty", ErrInvalidConfig)
	case c.RosterFile == "":
		return fmt.Errorf("%w: roster_file must not be empty", ErrInvalidConfig)
	case c.CooldownSeconds < 0:
		return fmt.Errorf("%w: cooldown_seconds must not be negative", ErrInvalidConfig)
	case c.MaxSubmissions < 1:
		return fmt.Errorf("%w: max_submissions must be positive", ErrInvalidConfig)
	case c.MaxUploadBytes < 1:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	case c.AdminUser == "" || c.BaselineUser == "":
		return fmt.Errorf("%w: admin_user and baseline_user must be set", ErrInvalidConfig)
	}
	return nil
}
