package rrt

import "math"

// Checker tests candidate edges against an obstacle set by sweeping the
// agent footprint along them
type Checker struct {
	Footprint Footprint
	// Density is the number of footprint samples per unit of travel
	Density   float64
	Obstacles Obstacles
}

// SegmentClear reports whether the footprint can travel from p to q.
// The segment is discretised into ceil(d*Density)+1 equally spaced samples,
// both endpoints included; a zero-length segment is sampled once.
func (c *Checker) SegmentClear(p, q Point) bool {
	if c.Obstacles == nil {
		return true
	}

	swept := c.Footprint.Rect(p).Union(c.Footprint.Rect(q))
	candidates := c.Obstacles.Candidates(swept)
	if len(candidates) == 0 {
		return true
	}

	samples := SampleCount(p.Distance(q), c.Density)
	for i := 0; i < samples; i++ {
		t := 0.0
		if samples > 1 {
			t = float64(i) / float64(samples-1)
		}
		agent := c.Footprint.Rect(p.Lerp(q, t))
		for _, obstacle := range candidates {
			if agent.Intersects(obstacle) {
				return false
			}
		}
	}
	return true
}

// MaxSegmentSamples caps the intervals a single segment is cut into
const MaxSegmentSamples = 1 << 20

// SampleCount returns how many positions are tested along a segment of the
// given length. Counts past MaxSegmentSamples+1 are capped, not wrapped.
func SampleCount(length, density float64) int {
	n := math.Ceil(length * density)
	switch {
	case math.IsNaN(n) || n >= MaxSegmentSamples:
		return MaxSegmentSamples + 1
	case n < 1:
		return 1
	}
	return int(n) + 1
}

// SegmentClear checks a single segment against a plain obstacle list
func SegmentClear(p, q Point, footprint Footprint, obstacles []Rect, density float64) bool {
	c := Checker{Footprint: footprint, Density: density, Obstacles: RectList(obstacles)}
	return c.SegmentClear(p, q)
}
