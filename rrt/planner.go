// Package rrt grows a rapidly-exploring random tree from a start point until
// it comes within one step of a goal, avoiding axis-aligned obstacles.
package rrt

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Source supplies uniform samples in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Outcome classifies a single planner step
type Outcome int

const (
	// Rejected means the proposed extension collided and was discarded
	Rejected Outcome = iota
	// Extended means a node was added to the tree
	Extended
	// GoalReached means a node was added within one step of the goal
	GoalReached
	// Exhausted means the iteration budget is spent; nothing was attempted
	Exhausted
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Extended:
		return "extended"
	case GoalReached:
		return "goal reached"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// StepOutcome is the result of Planner.Step. Node is the inserted node for
// Extended and GoalReached, NoParent otherwise.
type StepOutcome struct {
	Outcome Outcome
	Node    NodeID
}

// Observer is called once per tree extension with the new node and its parent
type Observer func(child, parent Point)

// Option configures a Planner
type Option func(*Planner)

// WithObserver registers fn to be told about every extension
func WithObserver(fn Observer) Option {
	return func(p *Planner) {
		p.observer = fn
	}
}

// Planner grows one RRT from Config.Start. It owns its tree and is not safe
// for concurrent use.
type Planner struct {
	cfg      Config
	checker  Checker
	tree     *Tree
	rng      Source
	observer Observer

	iterations int
	reached    bool
	goalParent NodeID
}

// NewPlanner validates cfg and returns a planner whose tree holds only the
// start node
func NewPlanner(cfg Config, obstacles Obstacles, rng Source, opts ...Option) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, invalid("random source is required")
	}
	if obstacles == nil {
		obstacles = RectList(nil)
	}

	p := &Planner{
		cfg: cfg,
		checker: Checker{
			Footprint: cfg.Footprint,
			Density:   cfg.Density,
			Obstacles: obstacles,
		},
		tree:       NewTree(cfg.Start),
		rng:        rng,
		goalParent: NoParent,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Tree returns the tree grown so far
func (p *Planner) Tree() *Tree { return p.tree }

// Iterations returns how many samples have been drawn
func (p *Planner) Iterations() int { return p.iterations }

// Reached reports whether the goal test has succeeded
func (p *Planner) Reached() bool { return p.reached }

// Done reports whether further steps can change anything
func (p *Planner) Done() bool {
	return p.reached || p.iterations >= p.cfg.MaxIterations
}

// Step performs one sample-steer-validate-insert iteration. Once the goal
// is reached it keeps returning GoalReached; once the budget is spent it
// returns Exhausted.
func (p *Planner) Step() StepOutcome {
	if p.reached {
		return StepOutcome{Outcome: GoalReached, Node: p.goalParent}
	}
	if p.iterations >= p.cfg.MaxIterations {
		return StepOutcome{Outcome: Exhausted, Node: NoParent}
	}
	p.iterations++

	sample := p.sample()
	nearestID := p.tree.Nearest(sample)
	nearest := p.tree.nodes[nearestID].Position
	candidate := steer(nearest, sample, p.cfg.StepSize)

	if !p.checker.SegmentClear(nearest, candidate) {
		return StepOutcome{Outcome: Rejected, Node: NoParent}
	}

	id, err := p.tree.Insert(candidate, nearestID)
	if err != nil {
		// Nearest only returns IDs from this tree
		panic(err)
	}
	if p.observer != nil {
		p.observer(candidate, nearest)
	}

	if candidate.Distance(p.cfg.Goal) < p.cfg.StepSize {
		p.reached = true
		p.goalParent = id
		return StepOutcome{Outcome: GoalReached, Node: id}
	}
	return StepOutcome{Outcome: Extended, Node: id}
}

// Waypoints returns the raw chain from start to goal. The goal itself is
// appended as a virtual child of the node that passed the goal test and is
// never part of the tree. It returns nil while the goal is unreached.
func (p *Planner) Waypoints() ([]Point, error) {
	if !p.reached {
		return nil, nil
	}
	chain, err := p.tree.PathToRoot(p.goalParent)
	if err != nil {
		return nil, err
	}
	return append(chain, p.cfg.Goal), nil
}

func (p *Planner) sample() Point {
	b := p.cfg.Bounds
	return Point{
		X: b.X + p.rng.Float64()*b.Width,
		Y: b.Y + p.rng.Float64()*b.Height,
	}
}

// steer advances exactly step from from along the bearing to toward, even
// when toward is closer than step. A sample on top of from steers along +X.
func steer(from, toward Point, step float64) Point {
	dir := mgl64.Vec2{toward.X - from.X, toward.Y - from.Y}
	if dir.Len() == 0 {
		dir = mgl64.Vec2{1, 0}
	} else {
		dir = dir.Normalize()
	}
	next := mgl64.Vec2{from.X, from.Y}.Add(dir.Mul(step))
	return Point{X: next.X(), Y: next.Y()}
}

// Result is the outcome of a complete planning run
type Result struct {
	Found      bool
	Waypoints  []Point // raw chain, start to goal
	Path       []Point // Waypoints smoothed with Config.Subdivisions
	Iterations int
	Tree       *Tree
}

// Plan runs the planner until the goal is reached or the iteration budget
// is spent. Running out of budget is reported through Result.Found, not as
// an error.
func Plan(cfg Config, obstacles Obstacles, rng Source, opts ...Option) (*Result, error) {
	planner, err := NewPlanner(cfg, obstacles, rng, opts...)
	if err != nil {
		return nil, err
	}

	for !planner.Done() {
		planner.Step()
	}

	result := &Result{
		Iterations: planner.Iterations(),
		Tree:       planner.Tree(),
	}
	if !planner.Reached() {
		return result, nil
	}

	waypoints, err := planner.Waypoints()
	if err != nil {
		return nil, err
	}
	path, err := Smooth(waypoints, cfg.Subdivisions)
	if err != nil {
		return nil, err
	}

	result.Found = true
	result.Waypoints = waypoints
	result.Path = path
	return result, nil
}
