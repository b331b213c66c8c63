package collide

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/akmonengine/collide/volume"
	"gopkg.in/yaml.v3"
)

const DEFAULT_WORKERS = 1

// Config holds the tunables of a Registry and a World.
type Config struct {
	// Axes lists the world axes (0 = X, 1 = Y, 2 = Z) the sweep is kept on.
	Axes []int `yaml:"axes"`
	// Margin pads every fit interval on both sides.
	Margin float64 `yaml:"margin"`
	// Workers is the goroutine count of the refit and narrow-phase fan-out.
	Workers int `yaml:"workers"`
	// NarrowPhase enables the exact volume test and the Contact events in
	// World.Step.
	NarrowPhase bool `yaml:"narrow_phase"`
}

// DefaultConfig tracks all three axes with a margin equal to the volume
// tolerance, so the broad phase never rejects a pair the volume tests accept.
func DefaultConfig() Config {
	return Config{
		Axes:        []int{0, 1, 2},
		Margin:      volume.Epsilon,
		Workers:     DEFAULT_WORKERS,
		NarrowPhase: true,
	}
}

// LoadConfig decodes a YAML document over DefaultConfig and validates the
// result. Missing keys keep their default value and an empty document yields
// the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the axes and margin. A non-positive worker count is
// accepted and means DEFAULT_WORKERS.
func (c Config) Validate() error {
	if len(c.Axes) == 0 || len(c.Axes) > 3 {
		return fmt.Errorf("%w: between 1 and 3 axes must be tracked, got %d", ErrInvalidArgument, len(c.Axes))
	}
	var seen [3]bool
	for _, axis := range c.Axes {
		if axis < 0 || axis > 2 {
			return fmt.Errorf("%w: axis %d out of range", ErrInvalidArgument, axis)
		}
		if seen[axis] {
			return fmt.Errorf("%w: axis %d tracked twice", ErrInvalidArgument, axis)
		}
		seen[axis] = true
	}
	if math.IsNaN(c.Margin) || math.IsInf(c.Margin, 0) || c.Margin < 0 {
		return fmt.Errorf("%w: margin must be finite and non-negative, got %v", ErrInvalidArgument, c.Margin)
	}
	return nil
}

func (c Config) workers() int {
	return max(DEFAULT_WORKERS, c.Workers)
}
