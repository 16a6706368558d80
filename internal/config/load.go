// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"
	"grimm.is/flywall/internal/errors"
)

// LoadOptions controls how a config file is loaded.
type LoadOptions struct {
	// AllowUnknownFields fails the load if the YAML document contains
	// keys this Config doesn't recognize, when false.
	AllowUnknownFields bool
}

// DefaultLoadOptions returns the daemon's baseline load behavior.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{AllowUnknownFields: true}
}

// LoadResult carries the parsed config plus non-fatal warnings collected
// during validation.
type LoadResult struct {
	Config   *Config
	Warnings []string
}

// LoadFile loads and validates path with DefaultLoadOptions.
func LoadFile(path string) (*Config, error) {
	result, err := LoadFileWithOptions(path, DefaultLoadOptions())
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadFileWithOptions reads path, parses it as YAML, applies defaults,
// and validates the result. Structural errors (bad YAML, missing
// required fields) are fatal; everything else is returned as a warning.
func LoadFileWithOptions(path string, opts LoadOptions) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindInvalidConfig, "read config file %s", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	if !opts.AllowUnknownFields {
		dec.KnownFields(true)
	}
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, errors.KindInvalidConfig, "parse config file %s", path)
	}
	applyDefaults(&cfg)

	warnings, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	return &LoadResult{Config: &cfg, Warnings: warnings}, nil
}

func applyDefaults(c *Config) {
	if c.Bind.Address == "" {
		c.Bind.Address = "0.0.0.0"
	}
	if c.Timers.TickIntervalMs <= 0 {
		c.Timers.TickIntervalMs = 1000
	}
	if c.Timers.DeadIntervalMs <= 0 {
		c.Timers.DeadIntervalMs = c.Timers.TickIntervalMs * 4
	}
	if c.Forwarding.Table == 0 {
		c.Forwarding.Table = 254 // main table
	}
}
