package rrt

import (
	"math"

	"go.uber.org/multierr"
)

// Config holds the inputs of one planning run
type Config struct {
	Start     Point     `json:"start"`
	Goal      Point     `json:"goal"`
	Bounds    Rect      `json:"bounds"`    // sampling area
	Footprint Footprint `json:"footprint"` // agent extent swept along edges

	StepSize      float64 `json:"stepSize"`      // exact length of every extension
	MaxIterations int     `json:"maxIterations"` // sample budget
	Subdivisions  int     `json:"subdivisions"`  // smoothing factor for Result.Path
	Density       float64 `json:"density"`       // collision samples per unit of travel
}

// DefaultConfig returns the parameters of an 800x600 scene with a 30x30 agent
func DefaultConfig() Config {
	return Config{
		Bounds:        Rect{X: 0, Y: 0, Width: 800, Height: 600},
		Footprint:     Footprint{Width: 30, Height: 30},
		StepSize:      20,
		MaxIterations: 1000,
		Subdivisions:  2,
		Density:       1,
	}
}

// Validate reports every invalid parameter at once
func (c Config) Validate() error {
	var err error
	if !positive(c.StepSize) {
		err = multierr.Append(err, invalid("step size %v must be positive and finite", c.StepSize))
	}
	if c.MaxIterations <= 0 {
		err = multierr.Append(err, invalid("max iterations %d must be positive", c.MaxIterations))
	}
	if c.Subdivisions < 1 {
		err = multierr.Append(err, invalid("subdivisions %d must be at least 1", c.Subdivisions))
	}
	if !positive(c.Footprint.Width) || !positive(c.Footprint.Height) {
		err = multierr.Append(err, invalid("footprint %vx%v must have positive sides",
			c.Footprint.Width, c.Footprint.Height))
	}
	if !positive(c.Bounds.Width) || !positive(c.Bounds.Height) || !finite(c.Bounds.X) || !finite(c.Bounds.Y) {
		err = multierr.Append(err, invalid("bounds (%v, %v) %vx%v must be finite with positive sides",
			c.Bounds.X, c.Bounds.Y, c.Bounds.Width, c.Bounds.Height))
	}
	if !positive(c.Density) {
		err = multierr.Append(err, invalid("collision density %v must be positive and finite", c.Density))
	} else if positive(c.StepSize) && c.StepSize*c.Density > MaxSegmentSamples {
		err = multierr.Append(err, invalid("step %v at density %v needs more than %d samples per edge",
			c.StepSize, c.Density, MaxSegmentSamples))
	}
	return err
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }
