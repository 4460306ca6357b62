// Package scene reads and writes the inputs and outputs of a planning run:
// obstacle rectangles, the sampling bounds, and optional start and goal
// markers.
package scene

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"rrt-planner/rrt"
)

// Scene is a planning area with its obstacles
type Scene struct {
	Bounds    rrt.Rect   `json:"bounds"`
	Obstacles []rrt.Rect `json:"obstacles"`
	Start     *rrt.Point `json:"start,omitempty"`
	Goal      *rrt.Point `json:"goal,omitempty"`
}

// ErrUnsupportedFormat is returned for files that are neither GeoJSON nor SVG
var ErrUnsupportedFormat = errors.New("unsupported scene format")

// LoadFile reads a .geojson/.json or .svg scene
func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open scene")
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return LoadGeoJSON(f)
	case ".svg":
		return LoadSVG(f)
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
}

// LoadDir merges every scene file in dir. Unreadable files are logged and
// skipped. Bounds are the union of the files' bounds; the first start and
// goal found win.
func LoadDir(dir string) (*Scene, error) {
	var files []string
	for _, pattern := range []string{"*.geojson", "*.json", "*.svg"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}

	log.Printf("Loading scenes from %d files...\n", len(files))

	merged := &Scene{}
	for _, file := range files {
		s, err := LoadFile(file)
		if err != nil {
			log.Printf("⚠️  Failed to load %s: %v\n", file, err)
			continue
		}
		merged.merge(s)
		log.Printf("   ✅ Loaded %d obstacles from %s\n", len(s.Obstacles), filepath.Base(file))
	}

	log.Printf("Total obstacles loaded: %d\n", len(merged.Obstacles))
	return merged, nil
}

func (s *Scene) merge(other *Scene) {
	s.Obstacles = append(s.Obstacles, other.Obstacles...)
	switch {
	case other.Bounds.Width <= 0 || other.Bounds.Height <= 0:
	case s.Bounds.Width <= 0 || s.Bounds.Height <= 0:
		s.Bounds = other.Bounds
	default:
		s.Bounds = s.Bounds.Union(other.Bounds)
	}
	if s.Start == nil {
		s.Start = other.Start
	}
	if s.Goal == nil {
		s.Goal = other.Goal
	}
}
