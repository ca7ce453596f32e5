// Package config holds the rule tables of the simulation and the runtime
// settings of a server, loaded from one YAML file with environment overrides.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

// Config is the root of the YAML file.
type Config struct {
	Server Settings `yaml:"server"`
	Rules  Rules    `yaml:"rules"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if err := c.Server.Validate(); err != nil {
		el.Add(fmt.Errorf("server: %w", err))
	}
	if err := c.Rules.Validate(); err != nil {
		el.Add(fmt.Errorf("rules: %w", err))
	}

	return el.Err()
}

// Load reads the YAML file at path over the defaults, applies AURORA_*
// environment overrides and validates the result. An empty path loads
// defaults only. Maps in the file merge key by key into the defaults; lists
// replace them.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty file decodes to io.EOF and leaves the defaults.
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg.Server, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(s *Settings, lookup lookupFunc) error {
	if v, ok := lookup("AURORA_DB"); ok {
		s.Database = v
	}
	if v, ok := lookup("AURORA_ADMIN_KEY"); ok {
		s.AdminKey = v
	}
	if v, ok := lookup("AURORA_LISTEN"); ok {
		s.Listen = v
	}
	if v, ok := lookup("AURORA_NATS_URL"); ok {
		s.NATS.URL = v
	}
	if v, ok := lookup("AURORA_SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("AURORA_SEED: %w", err)
		}
		s.Seed = seed
	}
	if v, ok := lookup("AURORA_TICK_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AURORA_TICK_INTERVAL: %w", err)
		}
		s.TickInterval = d
	}
	return nil
}
