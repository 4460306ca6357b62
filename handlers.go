package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"rrt-planner/rrt"
	"rrt-planner/scene"
)

// Per-request work limits
const (
	maxAttempts      = 10
	maxIterations    = 10000
	maxStepSize      = 10000
	maxDensity       = 100
	maxObstacleCount = 100000
)

// RouteRequest asks for a path. Zero numeric fields take the defaults of
// rrt.DefaultConfig; missing start, goal, bounds or obstacles come from
// the shared scene.
type RouteRequest struct {
	Start                 *rrt.Point     `json:"start,omitempty"`
	Goal                  *rrt.Point     `json:"goal,omitempty"`
	Bounds                *rrt.Rect      `json:"bounds,omitempty"`
	Footprint             *rrt.Footprint `json:"footprint,omitempty"`
	ConservativeFootprint bool           `json:"conservativeFootprint,omitempty"` // cover every heading
	Obstacles             []rrt.Rect     `json:"obstacles"`                       // null: use the shared scene

	StepSize      float64 `json:"stepSize,omitempty"`
	MaxIterations int     `json:"maxIterations,omitempty"`
	Subdivisions  int     `json:"subdivisions,omitempty"`
	Density       float64 `json:"density,omitempty"`

	Seed        *int64 `json:"seed,omitempty"`
	Attempts    int    `json:"attempts,omitempty"` // fresh runs with seed, seed+1, ...
	IncludeTree bool   `json:"includeTree,omitempty"`
}

// RouteResponse reports the last planning attempt of a request. Path is the
// smoothed route and Waypoints the raw tree chain; both are empty when no
// attempt reached the goal.
type RouteResponse struct {
	Path       []rrt.Point    `json:"path"`
	Waypoints  []rrt.Point    `json:"waypoints"`
	Success    bool           `json:"success"`
	Message    string         `json:"message,omitempty"`
	Length     float64        `json:"length,omitempty"`
	Iterations int            `json:"iterations"`
	Attempts   int            `json:"attempts"`
	Seed       int64          `json:"seed"`
	TreeSize   int            `json:"treeSize"`
	Tree       [][2]rrt.Point `json:"tree,omitempty"`
}

// routeRun is the outcome of the last planning attempt of a request
type routeRun struct {
	scene    *scene.Scene
	result   *rrt.Result
	attempts int
	seed     int64
}

// config resolves a request against defaults and the shared scene
func (req *RouteRequest) config(shared *scene.Scene) (rrt.Config, error) {
	cfg := rrt.DefaultConfig()

	switch {
	case req.Start != nil:
		cfg.Start = *req.Start
	case shared.Start != nil:
		cfg.Start = *shared.Start
	default:
		return cfg, errors.Wrap(rrt.ErrInvalidParameters, "no start point")
	}
	switch {
	case req.Goal != nil:
		cfg.Goal = *req.Goal
	case shared.Goal != nil:
		cfg.Goal = *shared.Goal
	default:
		return cfg, errors.Wrap(rrt.ErrInvalidParameters, "no goal point")
	}

	if req.Bounds != nil {
		cfg.Bounds = *req.Bounds
	} else if shared.Bounds.Width > 0 && shared.Bounds.Height > 0 {
		cfg.Bounds = shared.Bounds
	}
	if req.Footprint != nil {
		cfg.Footprint = *req.Footprint
	}
	if req.ConservativeFootprint {
		cfg.Footprint = cfg.Footprint.Conservative()
	}
	if req.StepSize != 0 {
		cfg.StepSize = req.StepSize
	}
	if req.MaxIterations != 0 {
		cfg.MaxIterations = req.MaxIterations
	}
	if req.Subdivisions != 0 {
		cfg.Subdivisions = req.Subdivisions
	}
	if req.Density != 0 {
		cfg.Density = req.Density
	}

	switch {
	case cfg.MaxIterations > maxIterations:
		return cfg, errors.Wrapf(rrt.ErrInvalidParameters, "max iterations %d above the limit of %d", cfg.MaxIterations, maxIterations)
	case cfg.StepSize > maxStepSize:
		return cfg, errors.Wrapf(rrt.ErrInvalidParameters, "step size %v above the limit of %v", cfg.StepSize, maxStepSize)
	case cfg.Density > maxDensity:
		return cfg, errors.Wrapf(rrt.ErrInvalidParameters, "collision density %v above the limit of %v", cfg.Density, maxDensity)
	case len(req.Obstacles) > maxObstacleCount:
		return cfg, errors.Wrapf(rrt.ErrInvalidParameters, "%d obstacles above the limit of %d", len(req.Obstacles), maxObstacleCount)
	}
	return cfg, rrt.ValidateObstacles(req.Obstacles)
}

// plan runs up to req.Attempts independent searches and stops at the first
// success
func (s *plannerServer) plan(req *RouteRequest) (*routeRun, error) {
	sharedScene, sharedIndex := s.shared()

	cfg, err := req.config(sharedScene)
	if err != nil {
		return nil, err
	}

	var obstacles rrt.Obstacles = sharedIndex
	sc := &scene.Scene{Bounds: cfg.Bounds, Obstacles: sharedScene.Obstacles}
	if req.Obstacles != nil {
		obstacles = rrt.NewObstacleIndex(req.Obstacles)
		sc.Obstacles = req.Obstacles
	}
	sc.Start, sc.Goal = &cfg.Start, &cfg.Goal

	attempts := req.Attempts
	if attempts < 1 {
		attempts = 1
	}
	if attempts > maxAttempts {
		attempts = maxAttempts
	}
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	s.logger.Printf("   Start: (%.2f, %.2f)\n", cfg.Start.X, cfg.Start.Y)
	s.logger.Printf("   Goal:  (%.2f, %.2f)\n", cfg.Goal.X, cfg.Goal.Y)
	s.logger.Printf("   Step: %.2f, budget: %d iterations, obstacles: %d\n",
		cfg.StepSize, cfg.MaxIterations, len(sc.Obstacles))

	run := &routeRun{scene: sc, seed: seed}
	for i := 0; i < attempts; i++ {
		run.attempts = i + 1
		run.result, err = rrt.Plan(cfg, obstacles, newSource(seed+int64(i)))
		if err != nil {
			return nil, err
		}
		if run.result.Found {
			break
		}
		s.logger.Printf("   ⚠️  Attempt %d: no path after %d iterations\n", i+1, run.result.Iterations)
	}
	return run, nil
}

func (s *plannerServer) decodeAndPlan(w http.ResponseWriter, r *http.Request) (*routeRun, *RouteRequest, bool) {
	s.logger.Println("========================================")
	s.logger.Println("📍 Route request received")

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, nil, false
	}

	run, err := s.plan(&req)
	if err != nil {
		if errors.Is(err, rrt.ErrInvalidParameters) {
			s.logger.Printf("❌ Invalid parameters: %v\n", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			s.logger.Printf("❌ Planning failed: %v\n", err)
			http.Error(w, "Planning failed", http.StatusInternalServerError)
		}
		s.logger.Println("========================================")
		return nil, nil, false
	}

	if run.result.Found {
		s.logger.Printf("✅ Path found with %d waypoints after %d iterations\n",
			len(run.result.Waypoints), run.result.Iterations)
	} else {
		s.logger.Printf("❌ No path found in %d attempts\n", run.attempts)
	}
	s.logger.Println("========================================")
	return run, &req, true
}

// POST /route
func (s *plannerServer) routeHandler(w http.ResponseWriter, r *http.Request) {
	run, req, ok := s.decodeAndPlan(w, r)
	if !ok {
		return
	}

	res := run.result
	response := RouteResponse{
		Path:       res.Path,
		Waypoints:  res.Waypoints,
		Success:    res.Found,
		Iterations: res.Iterations,
		Attempts:   run.attempts,
		Seed:       run.seed,
		TreeSize:   res.Tree.Len(),
	}
	if res.Found {
		response.Length = rrt.Length(res.Waypoints)
	} else {
		response.Message = "No path found within the iteration budget"
	}
	if req.IncludeTree {
		response.Tree = res.Tree.Edges()
	}

	s.writeJSON(w, http.StatusOK, response)
}

// POST /route/geojson
func (s *plannerServer) routeGeoJSONHandler(w http.ResponseWriter, r *http.Request) {
	run, _, ok := s.decodeAndPlan(w, r)
	if !ok {
		return
	}

	fc := scene.ToGeoJSON(run.scene, run.result.Tree, run.result.Path)
	fc.ExtraMembers = map[string]interface{}{
		"success":    run.result.Found,
		"iterations": run.result.Iterations,
		"seed":       run.seed,
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		s.logger.Printf("⚠️  Failed to write response: %v\n", err)
	}
}

// POST /route/svg
func (s *plannerServer) routeSVGHandler(w http.ResponseWriter, r *http.Request) {
	run, _, ok := s.decodeAndPlan(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if err := scene.WriteSVG(w, run.scene, run.result.Tree, run.result.Path); err != nil {
		s.logger.Printf("⚠️  Failed to write response: %v\n", err)
	}
}

// GET /health
func (s *plannerServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	sc, _ := s.shared()

	status := "ready"
	if len(sc.Obstacles) == 0 {
		status = "ready (no shared obstacles)"
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       status,
		"numObstacles": len(sc.Obstacles),
		"hasStart":     sc.Start != nil,
		"hasGoal":      sc.Goal != nil,
	})
}

// GET /obstacles
func (s *plannerServer) getObstaclesHandler(w http.ResponseWriter, r *http.Request) {
	sc, _ := s.shared()
	s.writeJSON(w, http.StatusOK, sc)
}

// PUT /obstacles
func (s *plannerServer) putObstaclesHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Println("========================================")
	s.logger.Println("🧱 Replace obstacles request received")

	var sc scene.Scene
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		s.logger.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := rrt.ValidateObstacles(sc.Obstacles); err != nil {
		s.logger.Printf("❌ Invalid obstacles: %v\n", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	received := len(sc.Obstacles)
	s.setScene(&sc)

	s.logger.Printf("✅ Stored %d obstacles (%d received)\n", len(sc.Obstacles), received)
	s.logger.Println("========================================")

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"numObstacles": len(sc.Obstacles),
		"numReceived":  received,
	})
}

func newSource(seed int64) rrt.Source {
	return rand.New(rand.NewSource(seed))
}

func (s *plannerServer) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("⚠️  Failed to write response: %v\n", err)
	}
}
