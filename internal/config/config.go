package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaoscrypt/internal/physics"
)

const (
	DefaultGrace    = 10.0
	DefaultEpsilon  = 0.01
	DefaultBitDepth = 16
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Grace    float64      `yaml:"grace"`
	Epsilon  float64      `yaml:"epsilon"`
	BitDepth int          `yaml:"bit_depth"`
	Seed     int64        `yaml:"seed"`
	System   SystemConfig `yaml:"system"`
}

// SystemConfig mirrors physics.Params with file-friendly names.
type SystemConfig struct {
	R     float64 `yaml:"r"`
	Sigma float64 `yaml:"sigma"`
	B     float64 `yaml:"b"`
}

func DefaultConfig() *Config {
	p := physics.DefaultParams()
	return &Config{
		Grace:    DefaultGrace,
		Epsilon:  DefaultEpsilon,
		BitDepth: DefaultBitDepth,
		System:   SystemConfig{R: p.R, Sigma: p.Sigma, B: p.B},
	}
}

// Load overlays the file at path onto the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case !(c.Grace >= 0) || math.IsInf(c.Grace, 0):
		return fmt.Errorf("%w: grace must be non-negative, got %v", ErrInvalid, c.Grace)
	case c.Epsilon == 0 || math.IsNaN(c.Epsilon) || math.IsInf(c.Epsilon, 0):
		return fmt.Errorf("%w: epsilon must be nonzero, got %v", ErrInvalid, c.Epsilon)
	}
	switch c.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: bit_depth must be 16, 24 or 32, got %d", ErrInvalid, c.BitDepth)
	}
	return nil
}

func (c *Config) Params() physics.Params {
	return physics.Params{R: c.System.R, Sigma: c.System.Sigma, B: c.System.B}
}

// SetParam overrides one system coefficient by name.
func (c *Config) SetParam(name string, v float64) error {
	p := c.Params()
	if err := p.Set(name, v); err != nil {
		return err
	}
	c.System = SystemConfig{R: p.R, Sigma: p.Sigma, B: p.B}
	return nil
}
