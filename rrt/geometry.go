package rrt

import "math"

// Point is a position in the planning plane
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Lerp returns the point a fraction t of the way from p to other
func (p Point) Lerp(other Point, t float64) Point {
	return Point{
		X: p.X + t*(other.X-p.X),
		Y: p.Y + t*(other.Y-p.Y),
	}
}

// Rect is an axis-aligned rectangle anchored at its minimum corner
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MaxX returns the right edge
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Center returns the midpoint of the rectangle
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Intersects reports whether the projections of r and other overlap on both
// axes. Touching edges count as overlapping.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.MaxX() && other.X <= r.MaxX() &&
		r.Y <= other.MaxY() && other.Y <= r.MaxY()
}

// Contains reports whether other lies entirely inside r
func (r Rect) Contains(other Rect) bool {
	return other.X >= r.X && other.MaxX() <= r.MaxX() &&
		other.Y >= r.Y && other.MaxY() <= r.MaxY()
}

// ContainsPoint reports whether p lies inside r, edges included
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X <= r.MaxX() && p.Y >= r.Y && p.Y <= r.MaxY()
}

// Union returns the smallest rectangle covering both r and other
func (r Rect) Union(other Rect) Rect {
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.MaxX(), other.MaxX())
	maxY := math.Max(r.MaxY(), other.MaxY())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Footprint is the extent of the agent swept along candidate edges.
// It never rotates while planning.
type Footprint struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect returns the footprint rectangle centred on center
func (f Footprint) Rect(center Point) Rect {
	return Rect{
		X:      center.X - f.Width/2,
		Y:      center.Y - f.Height/2,
		Width:  f.Width,
		Height: f.Height,
	}
}

// Conservative returns a square footprint whose side is the diagonal of f,
// large enough to cover the agent at any heading.
func (f Footprint) Conservative() Footprint {
	side := math.Hypot(f.Width, f.Height)
	return Footprint{Width: side, Height: side}
}
