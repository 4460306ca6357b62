package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rrt-planner/rrt"
	"rrt-planner/scene"
)

func newTestHandler() (*plannerServer, http.Handler) {
	s := newPlannerServer(log.New(io.Discard, "", 0))
	return s, newHandler(s)
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func seedOf(n int64) *int64 { return &n }

// ring returns four walls closing off a square around center
func ring(center rrt.Point, half, thickness float64) []rrt.Rect {
	x0, y0 := center.X-half, center.Y-half
	side := 2 * half
	return []rrt.Rect{
		{X: x0, Y: y0, Width: side, Height: thickness},
		{X: x0, Y: y0 + side - thickness, Width: side, Height: thickness},
		{X: x0, Y: y0, Width: thickness, Height: side},
		{X: x0 + side - thickness, Y: y0, Width: thickness, Height: side},
	}
}

func openRequest() RouteRequest {
	return RouteRequest{
		Start:     &rrt.Point{X: 50, Y: 100},
		Goal:      &rrt.Point{X: 150, Y: 100},
		Bounds:    &rrt.Rect{Width: 200, Height: 200},
		Footprint: &rrt.Footprint{Width: 10, Height: 10},
		Obstacles: []rrt.Rect{},
		Seed:      seedOf(3),
		Attempts:  3,
	}
}

func TestRouteFound(t *testing.T) {
	_, h := newTestHandler()
	req := openRequest()
	req.IncludeTree = true

	rec := do(t, h, http.MethodPost, "/route", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp RouteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Fatalf("no path: %+v", resp)
	}
	if resp.Path[0] != *req.Start || resp.Path[len(resp.Path)-1] != *req.Goal {
		t.Errorf("path runs %v to %v", resp.Path[0], resp.Path[len(resp.Path)-1])
	}
	// default subdivisions of 2
	if want := 2*(len(resp.Waypoints)-1) + 1; len(resp.Path) != want {
		t.Errorf("path has %d points for %d waypoints", len(resp.Path), len(resp.Waypoints))
	}
	if resp.Seed != 3 {
		t.Errorf("seed = %d, want 3", resp.Seed)
	}
	if len(resp.Tree) != resp.TreeSize-1 {
		t.Errorf("%d tree edges for %d nodes", len(resp.Tree), resp.TreeSize)
	}
	if resp.Length < 99.999 {
		t.Errorf("length %v is shorter than the straight line", resp.Length)
	}
}

func TestRouteDeterministic(t *testing.T) {
	_, h := newTestHandler()
	a := do(t, h, http.MethodPost, "/route", openRequest()).Body.String()
	b := do(t, h, http.MethodPost, "/route", openRequest()).Body.String()
	if a != b {
		t.Errorf("same seed, different answers:\n%s\n%s", a, b)
	}
}

func TestRouteNotFound(t *testing.T) {
	_, h := newTestHandler()
	goal := rrt.Point{X: 400, Y: 300}
	req := RouteRequest{
		Start:         &rrt.Point{X: 50, Y: 300},
		Goal:          &goal,
		Obstacles:     ring(goal, 60, 10),
		MaxIterations: 200,
		Seed:          seedOf(1),
		Attempts:      2,
	}

	rec := do(t, h, http.MethodPost, "/route", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp RouteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success || len(resp.Path) != 0 {
		t.Errorf("found a path into a closed ring: %+v", resp)
	}
	if resp.Attempts != 2 || resp.Iterations != 200 {
		t.Errorf("attempts %d iterations %d, want 2 and 200", resp.Attempts, resp.Iterations)
	}
	if resp.Message == "" {
		t.Errorf("missing message")
	}
}

func TestRouteBadRequests(t *testing.T) {
	_, h := newTestHandler()

	negative := openRequest()
	negative.StepSize = -5

	noGoal := openRequest()
	noGoal.Goal = nil

	badFootprint := openRequest()
	badFootprint.Footprint = &rrt.Footprint{Width: 0, Height: -1}

	longRun := openRequest()
	longRun.MaxIterations = maxIterations + 1

	hugeStep := openRequest()
	hugeStep.StepSize = maxStepSize * 10

	denseSweep := openRequest()
	denseSweep.Density = 1e7

	negativeObstacle := openRequest()
	negativeObstacle.Obstacles = []rrt.Rect{{X: 100, Y: 0, Width: -10, Height: 200}}

	cases := []struct {
		desc string
		body interface{}
	}{
		{"malformed json", `{"start":`},
		{"negative step", negative},
		{"no goal anywhere", noGoal},
		{"bad footprint", badFootprint},
		{"too many iterations", longRun},
		{"step too large", hugeStep},
		{"density too high", denseSweep},
		{"density overflowing the sample count", `{"start":{"x":0,"y":0},"goal":{"x":10,"y":0},"density":1e300}`},
		{"negative obstacle", negativeObstacle},
	}
	for _, c := range cases {
		if rec := do(t, h, http.MethodPost, "/route", c.body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", c.desc, rec.Code)
		}
	}

	if rec := do(t, h, http.MethodGet, "/route", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /route: status %d, want 405", rec.Code)
	}
}

func TestSharedObstacles(t *testing.T) {
	s, h := newTestHandler()

	goal := rrt.Point{X: 400, Y: 300}
	start := rrt.Point{X: 50, Y: 300}
	walls := ring(goal, 60, 10)
	// hidden inside a wall, pruned on upload
	walls = append(walls, rrt.Rect{X: goal.X - 58, Y: goal.Y - 58, Width: 2, Height: 2})

	shared := scene.Scene{
		Bounds:    rrt.Rect{Width: 800, Height: 600},
		Obstacles: walls,
		Start:     &start,
		Goal:      &goal,
	}
	rec := do(t, h, http.MethodPut, "/obstacles", shared)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /obstacles: status %d", rec.Code)
	}
	if sc, _ := s.shared(); len(sc.Obstacles) != 4 {
		t.Errorf("stored %d obstacles, want 4", len(sc.Obstacles))
	}

	// start and goal come from the shared scene
	rec = do(t, h, http.MethodPost, "/route", RouteRequest{MaxIterations: 100, Seed: seedOf(0)})
	var resp RouteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success {
		t.Errorf("shared walls ignored: %+v", resp)
	}

	// request obstacles replace the shared ones
	rec = do(t, h, http.MethodPost, "/route", RouteRequest{
		Start:     &rrt.Point{X: 360, Y: 300},
		Obstacles: []rrt.Rect{},
		Seed:      seedOf(0),
		Attempts:  5,
	})
	resp = RouteResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Errorf("no path 40 units away in an empty field: %+v", resp)
	}

	rec = do(t, h, http.MethodGet, "/health", nil)
	var health map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health["numObstacles"] != float64(4) {
		t.Errorf("health = %v", health)
	}

	rec = do(t, h, http.MethodGet, "/obstacles", nil)
	var got scene.Scene
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Obstacles) != 4 || got.Goal == nil || *got.Goal != goal {
		t.Errorf("GET /obstacles = %+v", got)
	}
}

func TestPutObstaclesRejectsNegativeSize(t *testing.T) {
	s, h := newTestHandler()
	bad := scene.Scene{
		Bounds:    rrt.Rect{Width: 800, Height: 600},
		Obstacles: []rrt.Rect{{X: 10, Y: 10, Width: 5, Height: 5}, {X: 50, Y: 0, Width: 10, Height: -80}},
	}
	if rec := do(t, h, http.MethodPut, "/obstacles", bad); rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
	if sc, _ := s.shared(); len(sc.Obstacles) != 0 {
		t.Errorf("rejected scene was stored: %+v", sc)
	}
}

// brokenWriter accepts headers but fails every body write
type brokenWriter struct {
	header http.Header
}

func (w *brokenWriter) Header() http.Header { return w.header }

func (w *brokenWriter) WriteHeader(int) {}

func (w *brokenWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestWriteJSONLogsFailure(t *testing.T) {
	var logged bytes.Buffer
	s := newPlannerServer(log.New(&logged, "", 0))
	s.writeJSON(&brokenWriter{header: http.Header{}}, http.StatusOK, map[string]int{"a": 1})
	if !strings.Contains(logged.String(), io.ErrClosedPipe.Error()) {
		t.Errorf("write failure not logged: %q", logged.String())
	}
}

func TestRouteRendered(t *testing.T) {
	_, h := newTestHandler()

	rec := do(t, h, http.MethodPost, "/route/geojson", openRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("geojson: status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("geojson content type %q", ct)
	}
	sc, err := scene.LoadGeoJSON(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Start == nil || *sc.Start != (rrt.Point{X: 50, Y: 100}) {
		t.Errorf("geojson start = %v", sc.Start)
	}

	rec = do(t, h, http.MethodPost, "/route/svg", openRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("svg: status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "<svg") || !strings.Contains(body, "<polyline") {
		t.Errorf("svg body:\n%s", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestHandler()
	req := httptest.NewRequest(http.MethodOptions, "/route", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
